package voice

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// DBProvider hands out gorm connections. frame's datastore pool satisfies
// this; tests substitute an in-memory sqlite database.
type DBProvider interface {
	DB(ctx context.Context, readOnly bool) *gorm.DB
}

// Repository provides CRUD operations for the voice directory.
type Repository struct {
	pool DBProvider
}

// NewRepository creates a new voice directory repository.
func NewRepository(pool DBProvider) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) db(ctx context.Context, readOnly bool) *gorm.DB {
	return r.pool.DB(ctx, readOnly)
}

// CreateVoice persists a new directory record for a cloned voice.
func (r *Repository) CreateVoice(ctx context.Context, v *Voice) error {
	return r.db(ctx, false).Create(v).Error
}

// GetVoice returns an active voice owned by the given user.
func (r *Repository) GetVoice(ctx context.Context, ownerID, id string) (*Voice, error) {
	var v Voice
	err := r.db(ctx, true).
		Where("id = ? AND owner_id = ? AND is_active = ?", id, ownerID, true).
		First(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// ListVoices returns the owner's active voices, newest first.
func (r *Repository) ListVoices(ctx context.Context, ownerID string) ([]Voice, error) {
	var voices []Voice
	err := r.db(ctx, true).
		Where("owner_id = ? AND is_active = ?", ownerID, true).
		Order("created_at DESC").
		Find(&voices).Error
	return voices, err
}

// RenameVoice updates the display name of an owned active voice.
func (r *Repository) RenameVoice(ctx context.Context, ownerID, id, name string) (*Voice, error) {
	v, err := r.GetVoice(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	v.Name = name
	if err = r.db(ctx, false).Save(v).Error; err != nil {
		return nil, err
	}
	return v, nil
}

// DeactivateVoice flips the active flag. The row and the provider-side
// voice both survive; the record just stops appearing in listings.
// Fetch-then-save: a column update through a fresh model value would get
// the id the BeforeCreate hook assigns appended to its WHERE clause.
func (r *Repository) DeactivateVoice(ctx context.Context, ownerID, id string) error {
	v, err := r.GetVoice(ctx, ownerID, id)
	if err != nil {
		return err
	}
	v.IsActive = false
	return r.db(ctx, false).Save(v).Error
}

// CreatePhrase persists a saved phrase.
func (r *Repository) CreatePhrase(ctx context.Context, p *SavedPhrase) error {
	return r.db(ctx, false).Create(p).Error
}

// GetPhrase fetches one of the owner's saved phrases by id.
func (r *Repository) GetPhrase(ctx context.Context, ownerID, id string) (*SavedPhrase, error) {
	var p SavedPhrase
	err := r.db(ctx, true).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// ListPhrases returns the owner's phrases for a voice, newest first.
func (r *Repository) ListPhrases(ctx context.Context, ownerID, voiceID string) ([]SavedPhrase, error) {
	var phrases []SavedPhrase
	err := r.db(ctx, true).
		Where("owner_id = ? AND voice_id = ?", ownerID, voiceID).
		Order("created_at DESC").
		Find(&phrases).Error
	return phrases, err
}
