package services

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"taskflow/backend/api-service/logging"
	"taskflow/backend/api-service/models"
	"taskflow/backend/api-service/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const minPasswordLength = 6

type UserService struct {
	UsersCollection    *mongo.Collection
	ProjectsCollection *mongo.Collection
	TasksCollection    *mongo.Collection
}

func NewUserService(usersCollection, projectsCollection, tasksCollection *mongo.Collection) *UserService {
	return &UserService{
		UsersCollection:    usersCollection,
		ProjectsCollection: projectsCollection,
		TasksCollection:    tasksCollection,
	}
}

// Register creates a user and issues a bearer token for the new account.
func (s *UserService) Register(ctx context.Context, name, email, password string) (*models.User, string, error) {
	if name == "" {
		return nil, "", models.NewFieldError("name is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, "", models.NewFieldError("a valid email is required")
	}
	if len(password) < minPasswordLength {
		return nil, "", models.NewFieldError("password must be at least 6 characters")
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %v", err)
	}

	now := time.Now()
	user := &models.User{
		ID:        primitive.NewObjectID(),
		Name:      name,
		Email:     email,
		Password:  hash,
		Role:      models.RoleUser,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := s.UsersCollection.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, "", models.NewFieldError("email is already registered")
		}
		return nil, "", fmt.Errorf("failed to create user: %v", err)
	}
	logging.Logger.Infof("Event ID: USER_REGISTERED, Description: Registered user %s", user.ID.Hex())

	token, err := utils.GenerateToken(user.ID.Hex())
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %v", err)
	}
	return user, token, nil
}

// Login checks credentials and issues a token. Unknown email and wrong
// password produce the same ErrUnauthorized so accounts cannot be probed.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	if email == "" || password == "" {
		return nil, "", models.NewFieldError("email and password are required")
	}

	var user models.User
	err := s.UsersCollection.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, "", ErrUnauthorized
		}
		return nil, "", fmt.Errorf("failed to look up user: %v", err)
	}

	if !utils.CheckPassword(user.Password, password) {
		logging.Logger.Warnf("Event ID: LOGIN_FAILED, Description: Failed login attempt for user %s", user.ID.Hex())
		return nil, "", ErrUnauthorized
	}

	token, err := utils.GenerateToken(user.ID.Hex())
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %v", err)
	}
	return &user, token, nil
}

// GetByID resolves a user id (hex) to the user record.
func (s *UserService) GetByID(ctx context.Context, userID string) (*models.User, error) {
	objectID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, ErrNotFound
	}

	var user models.User
	err = s.UsersCollection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch user: %v", err)
	}
	return &user, nil
}

// ListUsers returns id/name/email for every user, for member pickers.
func (s *UserService) ListUsers(ctx context.Context) ([]models.UserSummary, error) {
	opts := options.Find().SetProjection(bson.M{"_id": 1, "name": 1, "email": 1})
	cursor, err := s.UsersCollection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %v", err)
	}
	defer cursor.Close(ctx)

	users := []models.UserSummary{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %v", err)
	}
	return users, nil
}

// DeleteAccount removes the user unless they still own a project. On
// success their memberships and task assignments are cleaned up first so
// no record keeps pointing at a deleted user.
func (s *UserService) DeleteAccount(ctx context.Context, userID primitive.ObjectID) error {
	owned, err := s.ProjectsCollection.CountDocuments(ctx, bson.M{"owner": userID})
	if err != nil {
		return fmt.Errorf("failed to check owned projects: %v", err)
	}
	if owned > 0 {
		return ErrForbidden
	}

	if _, err := s.ProjectsCollection.UpdateMany(ctx,
		bson.M{"members": userID},
		bson.M{"$pull": bson.M{"members": userID}},
	); err != nil {
		return fmt.Errorf("failed to remove memberships: %v", err)
	}

	if _, err := s.TasksCollection.UpdateMany(ctx,
		bson.M{"assignedTo": userID},
		bson.M{"$unset": bson.M{"assignedTo": ""}},
	); err != nil {
		return fmt.Errorf("failed to clear task assignments: %v", err)
	}

	result, err := s.UsersCollection.DeleteOne(ctx, bson.M{"_id": userID})
	if err != nil {
		return fmt.Errorf("failed to delete user: %v", err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	logging.Logger.Infof("Event ID: USER_DELETED, Description: Deleted account %s", userID.Hex())
	return nil
}
