package models

import (
	"time"
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ProjectStatus string

const (
	ProjectActive    ProjectStatus = "active"
	ProjectCompleted ProjectStatus = "completed"
	ProjectArchived  ProjectStatus = "archived"
)

// DefaultProjectColor is the blue assigned when a project is created
// without an explicit color.
const DefaultProjectColor = "#3B82F6"

const (
	maxProjectNameLength        = 100
	maxProjectDescriptionLength = 500
)

type Project struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name        string               `bson:"name" json:"name"`
	Description string               `bson:"description" json:"description"`
	Color       string               `bson:"color" json:"color"`
	Status      ProjectStatus        `bson:"status" json:"status"`
	Owner       primitive.ObjectID   `bson:"owner" json:"owner"`
	Members     []primitive.ObjectID `bson:"members" json:"members"`
	CreatedAt   time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// HasMember reports whether the given user is in the project's member set.
func (p *Project) HasMember(userID primitive.ObjectID) bool {
	for _, m := range p.Members {
		if m == userID {
			return true
		}
	}
	return false
}

// EnsureOwnerMembership appends the owner to the member set if missing.
// Called on every write so the owner-is-a-member invariant survives
// arbitrary member updates, not just creation.
func (p *Project) EnsureOwnerMembership() {
	if !p.HasMember(p.Owner) {
		p.Members = append(p.Members, p.Owner)
	}
}

func ValidProjectStatus(s ProjectStatus) bool {
	switch s {
	case ProjectActive, ProjectCompleted, ProjectArchived:
		return true
	}
	return false
}

// ValidateProjectName checks the required-and-length rule shared by
// create and update.
func ValidateProjectName(name string) error {
	if name == "" {
		return NewFieldError("project name is required")
	}
	if utf8.RuneCountInString(name) > maxProjectNameLength {
		return NewFieldError("project name cannot be more than 100 characters")
	}
	return nil
}

func ValidateProjectDescription(description string) error {
	if utf8.RuneCountInString(description) > maxProjectDescriptionLength {
		return NewFieldError("project description cannot be more than 500 characters")
	}
	return nil
}

// ProjectUpdate is the allow-listed payload for PUT /api/projects/{id}.
// Owner and members are deliberately absent: ownership is immutable and
// membership changes go through the member endpoints.
type ProjectUpdate struct {
	Name        *string        `json:"name"`
	Description *string        `json:"description"`
	Color       *string        `json:"color"`
	Status      *ProjectStatus `json:"status"`
}

// Validate checks every field that is present.
func (u *ProjectUpdate) Validate() error {
	if u.Name != nil {
		if err := ValidateProjectName(*u.Name); err != nil {
			return err
		}
	}
	if u.Description != nil {
		if err := ValidateProjectDescription(*u.Description); err != nil {
			return err
		}
	}
	if u.Status != nil && !ValidProjectStatus(*u.Status) {
		return NewFieldError("invalid project status")
	}
	return nil
}

// Apply copies the present fields onto the project and refreshes the
// update timestamp.
func (u *ProjectUpdate) Apply(p *Project) {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
	if u.Color != nil {
		p.Color = *u.Color
	}
	if u.Status != nil {
		p.Status = *u.Status
	}
	p.UpdatedAt = time.Now()
}
