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

type TaskService struct {
	TasksCollection    *mongo.Collection
	ProjectsCollection *mongo.Collection
}

func NewTaskService(tasksCollection, projectsCollection *mongo.Collection) *TaskService {
	return &TaskService{
		TasksCollection:    tasksCollection,
		ProjectsCollection: projectsCollection,
	}
}

// TaskFilter narrows a project's task listing. Zero values mean no filter.
type TaskFilter struct {
	Status     models.TaskStatus
	Priority   models.TaskPriority
	AssignedTo string
}

func (s *TaskService) fetchProject(ctx context.Context, projectID primitive.ObjectID) (*models.Project, error) {
	var project models.Project
	err := s.ProjectsCollection.FindOne(ctx, bson.M{"_id": projectID}).Decode(&project)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch project: %v", err)
	}
	return &project, nil
}

func (s *TaskService) projectFromHex(ctx context.Context, projectID string) (*models.Project, error) {
	objectID, err := primitive.ObjectIDFromHex(projectID)
	if err != nil {
		return nil, ErrNotFound
	}
	return s.fetchProject(ctx, objectID)
}

// ListTasks returns a project's tasks in board order. Member-only.
func (s *TaskService) ListTasks(ctx context.Context, userID primitive.ObjectID, projectID string, filter TaskFilter) ([]models.Task, error) {
	project, err := s.projectFromHex(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := AuthorizeProject(userID, project, false); err != nil {
		return nil, err
	}

	query := bson.M{"project": project.ID}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.Priority != "" {
		query["priority"] = filter.Priority
	}
	if filter.AssignedTo != "" {
		assigneeID, err := primitive.ObjectIDFromHex(filter.AssignedTo)
		if err != nil {
			return nil, models.NewFieldError("invalid assignee filter")
		}
		query["assignedTo"] = assigneeID
	}

	opts := options.Find().SetSort(bson.D{{Key: "status", Value: 1}, {Key: "order", Value: 1}})
	cursor, err := s.TasksCollection.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %v", err)
	}
	defer cursor.Close(ctx)

	tasks := []models.Task{}
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, fmt.Errorf("failed to decode tasks: %v", err)
	}
	return tasks, nil
}

// nextOrder places a new arrival at the end of its (project, status)
// column: 1 + the current maximum, or 0 for an empty column.
func (s *TaskService) nextOrder(ctx context.Context, projectID primitive.ObjectID, status models.TaskStatus) (int, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "order", Value: -1}})
	var top models.Task
	err := s.TasksCollection.FindOne(ctx, bson.M{"project": projectID, "status": status}, opts).Decode(&top)
	return nextOrderFrom(&top, err)
}

// nextOrderFrom turns the top-of-column lookup result into the new
// position. An empty column starts at 0.
func nextOrderFrom(top *models.Task, err error) (int, error) {
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to compute task order: %v", err)
	}
	return top.Order + 1, nil
}

// resolveAssignee validates that the assignee is a member of the project.
// The check runs before any write.
func resolveAssignee(project *models.Project, assignee string) (*primitive.ObjectID, error) {
	if assignee == "" {
		return nil, nil
	}
	assigneeID, err := primitive.ObjectIDFromHex(assignee)
	if err != nil {
		return nil, models.NewFieldError("invalid assignee id")
	}
	if !project.HasMember(assigneeID) {
		return nil, models.NewFieldError("cannot assign task to non-member")
	}
	return &assigneeID, nil
}

// CreateTask inserts a task into the project. Member-only. An
// unspecified assignee defaults to the creator.
func (s *TaskService) CreateTask(ctx context.Context, userID primitive.ObjectID, projectID string, input *models.CreateTaskInput) (*models.Task, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	project, err := s.projectFromHex(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := AuthorizeProject(userID, project, false); err != nil {
		return nil, err
	}

	if input.AssignedTo == "" {
		input.AssignedTo = userID.Hex()
	}
	assignedTo, err := resolveAssignee(project, input.AssignedTo)
	if err != nil {
		return nil, err
	}

	order, err := s.nextOrder(ctx, project.ID, input.Status)
	if err != nil {
		return nil, err
	}

	tags := input.Tags
	if tags == nil {
		tags = []string{}
	}

	now := time.Now()
	task := &models.Task{
		ID:          primitive.NewObjectID(),
		Title:       input.Title,
		Description: input.Description,
		Project:     project.ID,
		AssignedTo:  assignedTo,
		CreatedBy:   userID,
		Status:      input.Status,
		Priority:    input.Priority,
		DueDate:     input.DueDate,
		Tags:        tags,
		Order:       order,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := s.TasksCollection.InsertOne(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %v", err)
	}
	logging.Logger.Infof("Event ID: TASK_CREATED, Description: Task %s created in project %s by %s", task.ID.Hex(), project.ID.Hex(), userID.Hex())
	return task, nil
}

// fetchTask loads a task and its project and checks read access. The
// task is reported absent when the requester cannot read the project.
func (s *TaskService) fetchTask(ctx context.Context, userID primitive.ObjectID, taskID string) (*models.Task, *models.Project, error) {
	objectID, err := primitive.ObjectIDFromHex(taskID)
	if err != nil {
		return nil, nil, ErrNotFound
	}

	var task models.Task
	err = s.TasksCollection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&task)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("failed to fetch task: %v", err)
	}

	project, err := s.fetchProject(ctx, task.Project)
	if err != nil {
		return nil, nil, err
	}
	if !CanReadTask(userID, project) {
		return nil, nil, ErrNotFound
	}
	return &task, project, nil
}

func (s *TaskService) GetTask(ctx context.Context, userID primitive.ObjectID, taskID string) (*models.Task, error) {
	task, _, err := s.fetchTask(ctx, userID, taskID)
	return task, err
}

// UpdateTask applies an allow-listed update. Any project member may
// modify any task in the project. Moving a task to another status column
// re-appends it at the end of that column.
func (s *TaskService) UpdateTask(ctx context.Context, userID primitive.ObjectID, taskID string, update *models.TaskUpdate) (*models.Task, error) {
	if err := update.Validate(); err != nil {
		return nil, err
	}

	task, project, err := s.fetchTask(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	if update.MovesColumn(task) {
		order, err := s.nextOrder(ctx, project.ID, *update.Status)
		if err != nil {
			return nil, err
		}
		task.Order = order
	}

	if update.AssignedTo != nil {
		assignedTo, err := resolveAssignee(project, *update.AssignedTo)
		if err != nil {
			return nil, err
		}
		task.AssignedTo = assignedTo
	}

	update.Apply(task)

	if _, err := s.TasksCollection.ReplaceOne(ctx, bson.M{"_id": task.ID}, task); err != nil {
		return nil, fmt.Errorf("failed to update task: %v", err)
	}
	return task, nil
}

func (s *TaskService) DeleteTask(ctx context.Context, userID primitive.ObjectID, taskID string) error {
	task, _, err := s.fetchTask(ctx, userID, taskID)
	if err != nil {
		return err
	}

	if _, err := s.TasksCollection.DeleteOne(ctx, bson.M{"_id": task.ID}); err != nil {
		return fmt.Errorf("failed to delete task: %v", err)
	}
	logging.Logger.Infof("Event ID: TASK_DELETED, Description: Task %s deleted by %s", task.ID.Hex(), userID.Hex())
	return nil
}
