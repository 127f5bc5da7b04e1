package handlers

import (
	"context"

	"github.com/google/uuid"
	"github.com/jason-s-yu/squadup/internal/models"
)

// Repository is the data access the HTTP layer needs. *database.Store implements it.
type Repository interface {
	ListGames(ctx context.Context, f models.GameFilter) ([]models.Game, error)
	GetGameBySlug(ctx context.Context, slug string) (models.Game, error)
	GetGameByID(ctx context.Context, id uuid.UUID) (models.Game, error)
	ListGameVersions(ctx context.Context, gameID uuid.UUID) ([]models.GameVersion, error)

	UpsertPresence(ctx context.Context, p *models.Player) error
	SetPresenceOffline(ctx context.Context, userID, gameID uuid.UUID) error
	ListAvailablePlayers(ctx context.Context, gameID uuid.UUID) ([]models.Player, error)

	ListCommunities(ctx context.Context, gameID *uuid.UUID) ([]models.Community, error)
	GetCommunityBySlug(ctx context.Context, slug string) (models.Community, error)
	ListPlayGuides(ctx context.Context, gameID *uuid.UUID) ([]models.PlayGuide, error)
	GetPlayGuideBySlug(ctx context.Context, slug string) (models.PlayGuide, error)

	ListEvents(ctx context.Context, gameID *uuid.UUID, upcomingOnly bool) ([]models.Event, error)
	GetEvent(ctx context.Context, id uuid.UUID) (models.Event, error)
	JoinEvent(ctx context.Context, eventID, userID uuid.UUID) error
	LeaveEvent(ctx context.Context, eventID, userID uuid.UUID) error
	ListEventParticipants(ctx context.Context, eventID uuid.UUID) ([]models.EventParticipant, error)

	ListPlayerGames(ctx context.Context, userID uuid.UUID) ([]models.PlayerGame, error)
	UpsertPlayerGame(ctx context.Context, pg *models.PlayerGame) error
	RemovePlayerGame(ctx context.Context, userID, gameID uuid.UUID) error
	Follow(ctx context.Context, follower, followee uuid.UUID) error
	Unfollow(ctx context.Context, follower, followee uuid.UUID) error
	ListFollowers(ctx context.Context, userID uuid.UUID) ([]models.PlayerFollow, error)
	ListFollowing(ctx context.Context, userID uuid.UUID) ([]models.PlayerFollow, error)

	ListLFGPosts(ctx context.Context, gameID *uuid.UUID, limit int) ([]models.LFGPost, error)
	CreateLFGPost(ctx context.Context, p *models.LFGPost) error
	DeleteLFGPost(ctx context.Context, id, userID uuid.UUID) error
}
