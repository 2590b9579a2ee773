package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"tunescout/db"
	"tunescout/logger"
	"tunescout/model"
)

// PlaylistRepository defines the interface for playlist persistence.
type PlaylistRepository interface {
	Save(playlist *model.Playlist) (int64, error)
	GetAll() ([]*model.Playlist, error)
	GetByID(id int64) (*model.Playlist, error)
	GetByParticipant(participantID string) ([]*model.Playlist, error)
	Delete(id int64) error
}

// mysqlPlaylistRepository implements PlaylistRepository for MySQL.
type mysqlPlaylistRepository struct {
	DB *sql.DB
}

// NewMySQLPlaylistRepository creates a new instance of mysqlPlaylistRepository.
func NewMySQLPlaylistRepository() PlaylistRepository {
	return &mysqlPlaylistRepository{DB: db.DB}
}

// Save persists a playlist with its track list serialized as JSON. A
// public UUID is assigned when the playlist does not carry one.
func (r *mysqlPlaylistRepository) Save(playlist *model.Playlist) (int64, error) {
	if playlist.PublicID == "" {
		playlist.PublicID = uuid.New().String()
	}

	tracksJSON, err := json.Marshal(playlist.Tracks)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal playlist tracks: %w", err)
	}

	query := `INSERT INTO playlists (public_id, playlist_name, description, participant_id, search_condition, query_input, tracks, track_count)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	stmt, err := r.DB.Prepare(query)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement for Save: %w", err)
	}
	defer stmt.Close()

	res, err := stmt.Exec(playlist.PublicID, playlist.PlaylistName, playlist.Description,
		playlist.ParticipantID, string(playlist.Condition), playlist.QueryInput,
		tracksJSON, playlist.TrackCount)
	if err != nil {
		return 0, fmt.Errorf("failed to execute Save: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for Save: %w", err)
	}
	playlist.ID = id

	logger.Info("playlist saved",
		logger.Int64("id", id),
		logger.String("name", playlist.PlaylistName))
	return id, nil
}

const playlistColumns = `id, public_id, playlist_name, description, participant_id, search_condition, query_input, tracks, track_count, created_at`

func scanPlaylist(scan func(dest ...interface{}) error) (*model.Playlist, error) {
	playlist := &model.Playlist{}
	var (
		condition  string
		tracksJSON []byte
	)
	err := scan(&playlist.ID, &playlist.PublicID, &playlist.PlaylistName, &playlist.Description,
		&playlist.ParticipantID, &condition, &playlist.QueryInput, &tracksJSON,
		&playlist.TrackCount, &playlist.CreatedAt)
	if err != nil {
		return nil, err
	}

	playlist.Condition = model.Condition(condition)
	if err := json.Unmarshal(tracksJSON, &playlist.Tracks); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tracks for playlist %d: %w", playlist.ID, err)
	}
	return playlist, nil
}

// GetAll retrieves every stored playlist, newest first.
func (r *mysqlPlaylistRepository) GetAll() ([]*model.Playlist, error) {
	query := `SELECT ` + playlistColumns + ` FROM playlists ORDER BY created_at DESC`
	rows, err := r.DB.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlists: %w", err)
	}
	defer rows.Close()

	return collectPlaylists(rows)
}

// GetByID retrieves a playlist by its numeric ID. Returns nil when the
// playlist does not exist.
func (r *mysqlPlaylistRepository) GetByID(id int64) (*model.Playlist, error) {
	query := `SELECT ` + playlistColumns + ` FROM playlists WHERE id = ?`
	row := r.DB.QueryRow(query, id)

	playlist, err := scanPlaylist(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan playlist by ID %d: %w", id, err)
	}
	return playlist, nil
}

// GetByParticipant retrieves every playlist saved under a participant
// id, newest first.
func (r *mysqlPlaylistRepository) GetByParticipant(participantID string) ([]*model.Playlist, error) {
	query := `SELECT ` + playlistColumns + ` FROM playlists WHERE participant_id = ? ORDER BY created_at DESC`
	rows, err := r.DB.Query(query, participantID)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlists for participant %s: %w", participantID, err)
	}
	defer rows.Close()

	return collectPlaylists(rows)
}

func collectPlaylists(rows *sql.Rows) ([]*model.Playlist, error) {
	playlists := make([]*model.Playlist, 0)
	for rows.Next() {
		playlist, err := scanPlaylist(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan playlist row: %w", err)
		}
		playlists = append(playlists, playlist)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during playlist rows iteration: %w", err)
	}
	return playlists, nil
}

// Delete removes a playlist by its numeric ID.
func (r *mysqlPlaylistRepository) Delete(id int64) error {
	stmt, err := r.DB.Prepare(`DELETE FROM playlists WHERE id = ?`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement for Delete: %w", err)
	}
	defer stmt.Close()

	res, err := stmt.Exec(id)
	if err != nil {
		return fmt.Errorf("failed to execute Delete for playlist ID %d: %w", id, err)
	}

	affected, _ := res.RowsAffected()
	if affected == 0 {
		return sql.ErrNoRows
	}

	logger.Info("playlist deleted", logger.Int64("id", id))
	return nil
}
