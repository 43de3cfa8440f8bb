package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/forkful/backend/internal/models"
	"github.com/forkful/backend/internal/types"
)

// ProfileService manages user profiles and cooking preferences.
type ProfileService struct {
	db *gorm.DB
}

func NewProfileService(db *gorm.DB) *ProfileService {
	return &ProfileService{db: db}
}

// GetProfile returns the profile for a user.
func (s *ProfileService) GetProfile(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error) {
	var profile models.UserProfile
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	return &profile, nil
}

// UpdateProfile applies the non-nil fields of the request.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID uuid.UUID, req *types.UpdateProfileRequest) (*models.UserProfile, error) {
	profile, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Username != "" {
		profile.Username = req.Username
	}
	if req.Bio != nil {
		profile.Bio = *req.Bio
	}
	if req.ProfilePictureURL != nil {
		profile.ProfilePictureURL = *req.ProfilePictureURL
	}
	if req.CookingSkill != nil {
		profile.CookingSkill = *req.CookingSkill
	}

	if err := s.db.WithContext(ctx).Save(profile).Error; err != nil {
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}
	return profile, nil
}

// GetPreferences assembles the user's stored cooking constraints.
func (s *ProfileService) GetPreferences(ctx context.Context, userID uuid.UUID) (*types.UserPreferences, error) {
	prefs := &types.UserPreferences{}

	var dietary []models.DietaryPreference
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&dietary).Error; err != nil {
		return nil, fmt.Errorf("failed to load dietary preferences: %w", err)
	}
	for _, d := range dietary {
		if d.PreferenceType == "custom" && d.CustomName != "" {
			prefs.DietaryPrefs = append(prefs.DietaryPrefs, d.CustomName)
		} else {
			prefs.DietaryPrefs = append(prefs.DietaryPrefs, d.PreferenceType)
		}
	}

	var allergens []models.Allergen
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&allergens).Error; err != nil {
		return nil, fmt.Errorf("failed to load allergens: %w", err)
	}
	for _, a := range allergens {
		prefs.Allergies = append(prefs.Allergies, a.AllergenName)
	}

	var cuisines []models.CuisinePreference
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&cuisines).Error; err != nil {
		return nil, fmt.Errorf("failed to load cuisines: %w", err)
	}
	for _, c := range cuisines {
		prefs.Cuisines = append(prefs.Cuisines, c.CuisineName)
	}

	var profile models.UserProfile
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err == nil {
		prefs.CookingSkill = profile.CookingSkill
	}

	return prefs, nil
}

// UpdatePreferences replaces the user's stored constraint lists.
func (s *ProfileService) UpdatePreferences(ctx context.Context, userID uuid.UUID, prefs *types.UserPreferences) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.DietaryPreference{}).Error; err != nil {
			return err
		}
		for _, p := range prefs.DietaryPrefs {
			dp := models.DietaryPreference{ID: uuid.New(), UserID: userID, PreferenceType: p}
			if err := tx.Create(&dp).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("user_id = ?", userID).Delete(&models.Allergen{}).Error; err != nil {
			return err
		}
		for _, a := range prefs.Allergies {
			record := models.Allergen{ID: uuid.New(), UserID: userID, AllergenName: a, SeverityLevel: 1}
			if err := tx.Create(&record).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("user_id = ?", userID).Delete(&models.CuisinePreference{}).Error; err != nil {
			return err
		}
		for _, c := range prefs.Cuisines {
			record := models.CuisinePreference{ID: uuid.New(), UserID: userID, CuisineName: c}
			if err := tx.Create(&record).Error; err != nil {
				return err
			}
		}

		if prefs.CookingSkill != "" {
			if err := tx.Model(&models.UserProfile{}).
				Where("user_id = ?", userID).
				Update("cooking_skill", prefs.CookingSkill).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
