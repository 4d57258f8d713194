package services

import (
	"context"
	"fmt"
	"time"

	"todo-web/app/models"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

const todoReturn = "RETURN t.sno AS sno, t.title AS title, t.desc AS desc, t.date_created AS date_created"

// Neo4jTodoService stores items as (:Todo) nodes. Serial numbers come from a
// (:Sequence {name: "todo"}) counter bumped inside the create transaction.
type Neo4jTodoService struct {
	driver   neo4j.DriverWithContext
	database string
	now      func() time.Time
}

var _ TodoStore = (*Neo4jTodoService)(nil)

// NewNeo4jTodoService creates a new instance of Neo4jTodoService.
func NewNeo4jTodoService(driver neo4j.DriverWithContext, database string) *Neo4jTodoService {
	return &Neo4jTodoService{driver: driver, database: database, now: time.Now}
}

func (s *Neo4jTodoService) session(ctx context.Context, mode neo4j.AccessMode) neo4j.SessionWithContext {
	return s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: mode, DatabaseName: s.database})
}

// Migrate creates the uniqueness constraint on Todo.sno.
func (s *Neo4jTodoService) Migrate(ctx context.Context) error {
	session := s.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	res, err := session.Run(ctx,
		"CREATE CONSTRAINT todo_sno IF NOT EXISTS FOR (t:Todo) REQUIRE t.sno IS UNIQUE", nil)
	if err != nil {
		return fmt.Errorf("failed to create constraint: %w", err)
	}
	if _, err := res.Consume(ctx); err != nil {
		return fmt.Errorf("failed to create constraint: %w", err)
	}
	return nil
}

// List retrieves all items ordered by creation time, newest first.
func (s *Neo4jTodoService) List(ctx context.Context) ([]models.Todo, error) {
	session := s.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx,
			"MATCH (t:Todo) "+todoReturn+" ORDER BY t.date_created DESC, t.sno DESC",
			nil,
		)
		if err != nil {
			return nil, err
		}

		todos := []models.Todo{}
		for res.Next(ctx) {
			todo, err := recordToTodo(res.Record())
			if err != nil {
				return nil, err
			}
			todos = append(todos, todo)
		}
		if err := res.Err(); err != nil {
			return nil, err
		}
		return todos, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}
	return result.([]models.Todo), nil
}

// Get retrieves a single item by its serial number.
func (s *Neo4jTodoService) Get(ctx context.Context, sno uint) (*models.Todo, error) {
	session := s.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx,
			"MATCH (t:Todo {sno: $sno}) "+todoReturn,
			map[string]any{"sno": int64(sno)},
		)
		if err != nil {
			return nil, err
		}
		return singleTodo(ctx, res)
	})
	if err != nil {
		return nil, err
	}
	return result.(*models.Todo), nil
}

// Create adds a new item stamped with the current time.
func (s *Neo4jTodoService) Create(ctx context.Context, title, desc string) (*models.Todo, error) {
	session := s.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	result, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx,
			"MERGE (seq:Sequence {name: 'todo'}) "+
				"ON CREATE SET seq.value = 0 "+
				"SET seq.value = seq.value + 1 "+
				"WITH seq.value AS sno "+
				"CREATE (t:Todo {sno: sno, title: $title, desc: $desc, date_created: $created}) "+
				todoReturn,
			map[string]any{
				"title":   title,
				"desc":    desc,
				"created": s.now(),
			},
		)
		if err != nil {
			return nil, err
		}
		return singleTodo(ctx, res)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create todo: %w", err)
	}
	return result.(*models.Todo), nil
}

// Update overwrites the title and description fields named in changes.
func (s *Neo4jTodoService) Update(ctx context.Context, sno uint, changes TodoChanges) (*models.Todo, error) {
	session := s.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	params := map[string]any{"sno": int64(sno), "title": nil, "desc": nil}
	if changes.Title != nil {
		params["title"] = *changes.Title
	}
	if changes.Desc != nil {
		params["desc"] = *changes.Desc
	}

	result, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx,
			"MATCH (t:Todo {sno: $sno}) "+
				"SET t.title = coalesce($title, t.title), t.desc = coalesce($desc, t.desc) "+
				todoReturn,
			params,
		)
		if err != nil {
			return nil, err
		}
		return singleTodo(ctx, res)
	})
	if err != nil {
		return nil, err
	}
	return result.(*models.Todo), nil
}

// Delete removes an item by serial number.
func (s *Neo4jTodoService) Delete(ctx context.Context, sno uint) error {
	session := s.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx,
			"MATCH (t:Todo {sno: $sno}) DETACH DELETE t",
			map[string]any{"sno": int64(sno)},
		)
		if err != nil {
			return nil, err
		}
		summary, err := res.Consume(ctx)
		if err != nil {
			return nil, err
		}
		if summary.Counters().NodesDeleted() == 0 {
			return nil, ErrNotFound
		}
		return nil, nil
	})
	return err
}

// Ping checks that the server is reachable.
func (s *Neo4jTodoService) Ping(ctx context.Context) error {
	return s.driver.VerifyConnectivity(ctx)
}

// Close shuts the driver down.
func (s *Neo4jTodoService) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

// singleTodo reads at most one record, mapping an empty result to ErrNotFound.
func singleTodo(ctx context.Context, res neo4j.ResultWithContext) (*models.Todo, error) {
	if res.Next(ctx) {
		todo, err := recordToTodo(res.Record())
		if err != nil {
			return nil, err
		}
		return &todo, nil
	}
	if err := res.Err(); err != nil {
		return nil, err
	}
	return nil, ErrNotFound
}

func recordToTodo(record *neo4j.Record) (models.Todo, error) {
	sno, _, err := neo4j.GetRecordValue[int64](record, "sno")
	if err != nil {
		return models.Todo{}, err
	}
	title, _, err := neo4j.GetRecordValue[string](record, "title")
	if err != nil {
		return models.Todo{}, err
	}
	desc, _, err := neo4j.GetRecordValue[string](record, "desc")
	if err != nil {
		return models.Todo{}, err
	}
	created, _, err := neo4j.GetRecordValue[time.Time](record, "date_created")
	if err != nil {
		return models.Todo{}, err
	}

	return models.Todo{
		SNo:         uint(sno),
		Title:       title,
		Desc:        desc,
		DateCreated: created,
	}, nil
}
