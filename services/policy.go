package services

import (
	"taskflow/backend/api-service/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Membership-model access rules for projects and their tasks. Any member
// may read a project and read/create/modify its tasks; project metadata
// and membership changes are owner-only. Tasks have no sub-ownership of
// their own.

func CanReadProject(userID primitive.ObjectID, p *models.Project) bool {
	return p.HasMember(userID)
}

func CanMutateProject(userID primitive.ObjectID, p *models.Project) bool {
	return p.Owner == userID
}

func CanDeleteProject(userID primitive.ObjectID, p *models.Project) bool {
	return p.Owner == userID
}

func CanReadTask(userID primitive.ObjectID, p *models.Project) bool {
	return CanReadProject(userID, p)
}

func CanCreateTask(userID primitive.ObjectID, p *models.Project) bool {
	return CanReadProject(userID, p)
}

func CanMutateTask(userID primitive.ObjectID, p *models.Project) bool {
	return CanReadProject(userID, p)
}

func CanDeleteTask(userID primitive.ObjectID, p *models.Project) bool {
	return CanReadProject(userID, p)
}

// AuthorizeProject applies the uniform failure rule: a non-member gets
// ErrNotFound so existence is not leaked, a member attempting an
// owner-only action gets ErrForbidden.
func AuthorizeProject(userID primitive.ObjectID, p *models.Project, ownerOnly bool) error {
	if !CanReadProject(userID, p) {
		return ErrNotFound
	}
	if ownerOnly && !CanMutateProject(userID, p) {
		return ErrForbidden
	}
	return nil
}
