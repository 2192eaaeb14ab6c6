package http

import (
	"time"

	"github.com/khoahotran/devprofiles/internal/domain/profile"
)

// Profile DTOs

type UpsertProfileRequest struct {
	Company        profile.Text `json:"company"`
	Website        profile.Text `json:"website"`
	Location       profile.Text `json:"location"`
	Bio            profile.Text `json:"bio"`
	Status         profile.Text `json:"status" validate:"required"`
	GitHubUsername profile.Text `json:"githubusername"`
	Skills         profile.Text `json:"skills" validate:"required"`
	YouTube        profile.Text `json:"youtube"`
	Facebook       profile.Text `json:"facebook"`
	Twitter        profile.Text `json:"twitter"`
	Instagram      profile.Text `json:"instagram"`
	LinkedIn       profile.Text `json:"linkedin"`
}

func (req *UpsertProfileRequest) ToDomainFields() profile.Fields {
	return profile.Fields{
		Company:        req.Company,
		Website:        req.Website,
		Location:       req.Location,
		Bio:            req.Bio,
		Status:         req.Status,
		GitHubUsername: req.GitHubUsername,
		Skills:         req.Skills,
		YouTube:        req.YouTube,
		Facebook:       req.Facebook,
		Twitter:        req.Twitter,
		Instagram:      req.Instagram,
		LinkedIn:       req.LinkedIn,
	}
}

type ProfileUserDTO struct {
	ID     string `json:"id"`
	Name   string `json:"name,omitempty"`
	Avatar string `json:"avatar,omitempty"`
}

type SocialDTO struct {
	YouTube   *string `json:"youtube,omitempty"`
	Facebook  *string `json:"facebook,omitempty"`
	Twitter   *string `json:"twitter,omitempty"`
	Instagram *string `json:"instagram,omitempty"`
	LinkedIn  *string `json:"linkedin,omitempty"`
}

type ProfileDTO struct {
	ID             string         `json:"id"`
	User           ProfileUserDTO `json:"user"`
	Company        *string        `json:"company,omitempty"`
	Website        *string        `json:"website,omitempty"`
	Location       *string        `json:"location,omitempty"`
	Bio            *string        `json:"bio,omitempty"`
	Status         *string        `json:"status,omitempty"`
	GitHubUsername *string        `json:"githubusername,omitempty"`
	Skills         []string       `json:"skills,omitempty"`
	Social         SocialDTO      `json:"social"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

func ToProfileDTO(p *profile.Profile) ProfileDTO {
	user := ProfileUserDTO{ID: p.OwnerID.String()}
	if p.Owner != nil {
		user.Name = p.Owner.Name
		user.Avatar = p.Owner.Avatar
	}
	return ProfileDTO{
		ID:             p.ID.String(),
		User:           user,
		Company:        p.Company,
		Website:        p.Website,
		Location:       p.Location,
		Bio:            p.Bio,
		Status:         p.Status,
		GitHubUsername: p.GitHubUsername,
		Skills:         p.Skills,
		Social:         SocialDTO(p.Social),
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

func ToProfileDTOs(ps []*profile.Profile) []ProfileDTO {
	dtos := make([]ProfileDTO, len(ps))
	for i, p := range ps {
		dtos[i] = ToProfileDTO(p)
	}
	return dtos
}

type MessageResponse struct {
	Msg string `json:"msg"`
}
