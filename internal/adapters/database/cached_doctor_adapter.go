package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ederjesus1004/Prescito-Doctor/internal/domain/entities"
	"github.com/ederjesus1004/Prescito-Doctor/internal/domain/providers"
	"github.com/ederjesus1004/Prescito-Doctor/internal/domain/repositories"
)

// CachedDoctorAdapter wraps DoctorAdapter with caching
type CachedDoctorAdapter struct {
	adapter repositories.DoctorRepository
	cache   providers.CacheProvider
}

// NewCachedDoctorAdapter creates a new cached doctor adapter
func NewCachedDoctorAdapter(adapter repositories.DoctorRepository, cache providers.CacheProvider) repositories.DoctorRepository {
	return &CachedDoctorAdapter{
		adapter: adapter,
		cache:   cache,
	}
}

// Doctor profiles change rarely; lists are invalidated on writes but
// expire sooner to bound staleness after a missed invalidation.
const (
	doctorByIDTTL  = 5 * time.Minute
	doctorsListTTL = 2 * time.Minute
)

func doctorCacheKey(id string) string {
	return fmt.Sprintf("doctor:%s", id)
}

func doctorsListCacheKey(filters repositories.DoctorFilters) string {
	return fmt.Sprintf("doctors:list:%s:%t", filters.Speciality, filters.AvailableOnly)
}

// Create creates a doctor and invalidates list caches
func (a *CachedDoctorAdapter) Create(ctx context.Context, doctor *entities.Doctor) error {
	if err := a.adapter.Create(ctx, doctor); err != nil {
		return err
	}
	a.invalidateLists(ctx, doctor.Speciality)
	return nil
}

// GetByID retrieves a doctor by ID with caching
func (a *CachedDoctorAdapter) GetByID(ctx context.Context, id string) (*entities.Doctor, error) {
	cacheKey := doctorCacheKey(id)

	if cached, err := a.cache.Get(ctx, cacheKey); err == nil {
		var doctor entities.Doctor
		if err := json.Unmarshal(cached, &doctor); err != nil {
			log.Warn().Str("doctor_id", id).Err(err).Msg("failed to unmarshal cached doctor")
		} else {
			return &doctor, nil
		}
	}

	doctor, err := a.adapter.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	go func() {
		bgCtx := context.Background()
		if data, err := json.Marshal(doctor); err == nil {
			if err := a.cache.Set(bgCtx, cacheKey, data, doctorByIDTTL); err != nil {
				log.Warn().Str("doctor_id", id).Err(err).Msg("failed to cache doctor")
			}
		}
	}()

	return doctor, nil
}

// GetByEmail delegates without caching; it only serves login checks
func (a *CachedDoctorAdapter) GetByEmail(ctx context.Context, email string) (*entities.Doctor, error) {
	return a.adapter.GetByEmail(ctx, email)
}

// List retrieves doctors with caching
func (a *CachedDoctorAdapter) List(ctx context.Context, filters repositories.DoctorFilters) ([]*entities.Doctor, error) {
	cacheKey := doctorsListCacheKey(filters)

	if cached, err := a.cache.Get(ctx, cacheKey); err == nil {
		var doctors []*entities.Doctor
		if err := json.Unmarshal(cached, &doctors); err == nil {
			return doctors, nil
		}
	}

	doctors, err := a.adapter.List(ctx, filters)
	if err != nil {
		return nil, err
	}

	go func() {
		bgCtx := context.Background()
		if data, err := json.Marshal(doctors); err == nil {
			if err := a.cache.Set(bgCtx, cacheKey, data, doctorsListTTL); err != nil {
				log.Warn().Err(err).Msg("failed to cache doctors list")
			}
		}
	}()

	return doctors, nil
}

// SetAvailability toggles availability and invalidates affected caches
func (a *CachedDoctorAdapter) SetAvailability(ctx context.Context, id string, available bool) error {
	if err := a.adapter.SetAvailability(ctx, id, available); err != nil {
		return err
	}

	if err := a.cache.Delete(ctx, doctorCacheKey(id)); err != nil {
		log.Warn().Str("doctor_id", id).Err(err).Msg("failed to invalidate doctor cache")
	}
	a.invalidateLists(ctx, "")

	return nil
}

// SlotMap always reads through; slot state must never be stale
func (a *CachedDoctorAdapter) SlotMap(ctx context.Context, doctorID string) (entities.SlotMap, error) {
	return a.adapter.SlotMap(ctx, doctorID)
}

func (a *CachedDoctorAdapter) invalidateLists(ctx context.Context, speciality string) {
	keys := []string{
		doctorsListCacheKey(repositories.DoctorFilters{}),
		doctorsListCacheKey(repositories.DoctorFilters{AvailableOnly: true}),
	}
	if speciality != "" {
		keys = append(keys,
			doctorsListCacheKey(repositories.DoctorFilters{Speciality: speciality}),
			doctorsListCacheKey(repositories.DoctorFilters{Speciality: speciality, AvailableOnly: true}),
		)
	}
	for _, key := range keys {
		if err := a.cache.Delete(ctx, key); err != nil {
			log.Warn().Str("key", key).Err(err).Msg("failed to invalidate list cache")
		}
	}
}
