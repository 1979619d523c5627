package services

import (
	"context"
	"fmt"
	"time"

	"taskflow/backend/api-service/logging"
	"taskflow/backend/api-service/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ProjectService struct {
	ProjectsCollection *mongo.Collection
	TasksCollection    *mongo.Collection
	UsersCollection    *mongo.Collection
}

func NewProjectService(projectsCollection, tasksCollection, usersCollection *mongo.Collection) *ProjectService {
	return &ProjectService{
		ProjectsCollection: projectsCollection,
		TasksCollection:    tasksCollection,
		UsersCollection:    usersCollection,
	}
}

// CreateProject inserts a project owned by the creator. The creator is
// placed in the member set in the same insert, so there is never an
// observable project without members.
func (s *ProjectService) CreateProject(ctx context.Context, ownerID primitive.ObjectID, name, description, color string) (*models.Project, error) {
	if err := models.ValidateProjectName(name); err != nil {
		return nil, err
	}
	if err := models.ValidateProjectDescription(description); err != nil {
		return nil, err
	}
	if color == "" {
		color = models.DefaultProjectColor
	}

	now := time.Now()
	project := &models.Project{
		ID:          primitive.NewObjectID(),
		Name:        name,
		Description: description,
		Color:       color,
		Status:      models.ProjectActive,
		Owner:       ownerID,
		Members:     []primitive.ObjectID{ownerID},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := s.ProjectsCollection.InsertOne(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to create project: %v", err)
	}
	logging.Logger.Infof("Event ID: PROJECT_CREATED, Description: Project %s created by %s", project.ID.Hex(), ownerID.Hex())
	return project, nil
}

// ListProjects returns every project the user is a member of, newest first.
func (s *ProjectService) ListProjects(ctx context.Context, userID primitive.ObjectID) ([]models.Project, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := s.ProjectsCollection.Find(ctx, bson.M{"members": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %v", err)
	}
	defer cursor.Close(ctx)

	projects := []models.Project{}
	if err := cursor.All(ctx, &projects); err != nil {
		return nil, fmt.Errorf("failed to decode projects: %v", err)
	}
	return projects, nil
}

// fetchProject loads a project by hex id. A malformed or unknown id is
// ErrNotFound; access checks are the caller's job.
func (s *ProjectService) fetchProject(ctx context.Context, projectID string) (*models.Project, error) {
	objectID, err := primitive.ObjectIDFromHex(projectID)
	if err != nil {
		return nil, ErrNotFound
	}

	var project models.Project
	err = s.ProjectsCollection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&project)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch project: %v", err)
	}
	return &project, nil
}

func (s *ProjectService) GetProject(ctx context.Context, userID primitive.ObjectID, projectID string) (*models.Project, error) {
	project, err := s.fetchProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := AuthorizeProject(userID, project, false); err != nil {
		return nil, err
	}
	return project, nil
}

// UpdateProject applies an allow-listed update. Owner-only.
func (s *ProjectService) UpdateProject(ctx context.Context, userID primitive.ObjectID, projectID string, update *models.ProjectUpdate) (*models.Project, error) {
	if err := update.Validate(); err != nil {
		return nil, err
	}

	project, err := s.fetchProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := AuthorizeProject(userID, project, true); err != nil {
		return nil, err
	}

	update.Apply(project)
	project.EnsureOwnerMembership()

	_, err = s.ProjectsCollection.ReplaceOne(ctx, bson.M{"_id": project.ID}, project)
	if err != nil {
		return nil, fmt.Errorf("failed to update project: %v", err)
	}
	return project, nil
}

// DeleteProject removes the project and every task in it. Owner-only.
// Tasks go first so a reader can never see orphaned tasks after the
// project record is gone.
func (s *ProjectService) DeleteProject(ctx context.Context, userID primitive.ObjectID, projectID string) error {
	project, err := s.fetchProject(ctx, projectID)
	if err != nil {
		return err
	}
	if err := AuthorizeProject(userID, project, true); err != nil {
		return err
	}

	if _, err := s.TasksCollection.DeleteMany(ctx, bson.M{"project": project.ID}); err != nil {
		return fmt.Errorf("failed to delete project tasks: %v", err)
	}
	if _, err := s.ProjectsCollection.DeleteOne(ctx, bson.M{"_id": project.ID}); err != nil {
		return fmt.Errorf("failed to delete project: %v", err)
	}
	logging.Logger.Infof("Event ID: PROJECT_DELETED, Description: Project %s and its tasks deleted by %s", project.ID.Hex(), userID.Hex())
	return nil
}

// GetMembers returns the member list with name and email. Member-only.
func (s *ProjectService) GetMembers(ctx context.Context, userID primitive.ObjectID, projectID string) ([]models.UserSummary, error) {
	project, err := s.fetchProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := AuthorizeProject(userID, project, false); err != nil {
		return nil, err
	}

	opts := options.Find().SetProjection(bson.M{"_id": 1, "name": 1, "email": 1})
	cursor, err := s.UsersCollection.Find(ctx, bson.M{"_id": bson.M{"$in": project.Members}}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch project members: %v", err)
	}
	defer cursor.Close(ctx)

	members := []models.UserSummary{}
	if err := cursor.All(ctx, &members); err != nil {
		return nil, fmt.Errorf("failed to decode project members: %v", err)
	}
	return members, nil
}

// AddMember adds an existing user to the member set. Owner-only. Adding
// a current member is a no-op.
func (s *ProjectService) AddMember(ctx context.Context, userID primitive.ObjectID, projectID, memberID string) error {
	project, err := s.fetchProject(ctx, projectID)
	if err != nil {
		return err
	}
	if err := AuthorizeProject(userID, project, true); err != nil {
		return err
	}

	memberObjectID, err := primitive.ObjectIDFromHex(memberID)
	if err != nil {
		return models.NewFieldError("invalid user id")
	}

	count, err := s.UsersCollection.CountDocuments(ctx, bson.M{"_id": memberObjectID})
	if err != nil {
		return fmt.Errorf("failed to look up user: %v", err)
	}
	if count == 0 {
		return ErrNotFound
	}

	_, err = s.ProjectsCollection.UpdateOne(ctx,
		bson.M{"_id": project.ID},
		bson.M{"$addToSet": bson.M{"members": memberObjectID}},
	)
	if err != nil {
		return fmt.Errorf("failed to add member to project: %v", err)
	}
	logging.Logger.Infof("Event ID: MEMBER_ADDED, Description: User %s added to project %s", memberID, project.ID.Hex())
	return nil
}

// RemoveMember pulls a member from the project. Owner-only. The owner
// cannot be removed, and a member assigned to an in-progress task stays
// until the work is handed off.
func (s *ProjectService) RemoveMember(ctx context.Context, userID primitive.ObjectID, projectID, memberID string) error {
	project, err := s.fetchProject(ctx, projectID)
	if err != nil {
		return err
	}
	if err := AuthorizeProject(userID, project, true); err != nil {
		return err
	}

	memberObjectID, err := primitive.ObjectIDFromHex(memberID)
	if err != nil {
		return models.NewFieldError("invalid member id")
	}
	if memberObjectID == project.Owner {
		return models.NewFieldError("the project owner cannot be removed")
	}
	if !project.HasMember(memberObjectID) {
		return ErrNotFound
	}

	active, err := s.TasksCollection.CountDocuments(ctx, bson.M{
		"project":    project.ID,
		"status":     models.StatusInProgress,
		"assignedTo": memberObjectID,
	})
	if err != nil {
		return fmt.Errorf("failed to check task assignments: %v", err)
	}
	if active > 0 {
		return models.NewFieldError("cannot remove member assigned to an in-progress task")
	}

	if _, err := s.ProjectsCollection.UpdateOne(ctx,
		bson.M{"_id": project.ID},
		bson.M{"$pull": bson.M{"members": memberObjectID}},
	); err != nil {
		return fmt.Errorf("failed to remove member from project: %v", err)
	}

	if _, err := s.TasksCollection.UpdateMany(ctx,
		bson.M{"project": project.ID, "assignedTo": memberObjectID},
		bson.M{"$unset": bson.M{"assignedTo": ""}},
	); err != nil {
		return fmt.Errorf("failed to clear member assignments: %v", err)
	}
	logging.Logger.Infof("Event ID: MEMBER_REMOVED, Description: User %s removed from project %s", memberID, project.ID.Hex())
	return nil
}
