package graphapi

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/notehub/internal/common"
	"github.com/dmitrijs2005/notehub/internal/logging"
	"github.com/dmitrijs2005/notehub/internal/server/auth"
	"github.com/dmitrijs2005/notehub/internal/server/models"
	"github.com/dmitrijs2005/notehub/internal/server/services"
	"github.com/graphql-go/graphql"
)

// Resolver holds the domain services the schema closes over. Resolvers do
// no validation of their own.
type Resolver struct {
	users  *services.UserService
	notes  *services.NoteService
	logger logging.Logger
}

func NewResolver(us *services.UserService, ns *services.NoteService, l logging.Logger) *Resolver {
	return &Resolver{users: us, notes: ns, logger: l.With("module", "graphql")}
}

// fail converts a service error into the wire shape, logging the cases an
// operator needs to see (partial failures distinctly).
func (r *Resolver) fail(p graphql.ResolveParams, err error) error {
	switch {
	case errors.Is(err, common.ErrPartialFailure):
		r.logger.Error(p.Context, "partial failure", "error", err.Error())
	case translate(err).code == "INTERNAL_SERVER_ERROR":
		r.logger.Error(p.Context, "request failed", "error", err.Error())
	}
	return translate(err)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

// ownerID extracts the user id from either source shape the user type
// serves: full records and the redacted owner summaries carried on notes.
func ownerID(source interface{}) string {
	switch u := source.(type) {
	case *models.User:
		return u.ID
	case *models.UserSummary:
		return u.ID
	default:
		return ""
	}
}

// NewSchema builds the GraphQL schema. Operations mirror the REST routes;
// allNotes exposes creation-time descending order.
func NewSchema(r *Resolver) (graphql.Schema, error) {

	noteType := graphql.NewObject(graphql.ObjectConfig{Name: "Note", Fields: graphql.Fields{}})
	userType := graphql.NewObject(graphql.ObjectConfig{Name: "User", Fields: graphql.Fields{}})

	userType.AddFieldConfig("id", &graphql.Field{
		Type: graphql.NewNonNull(graphql.ID),
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			return ownerID(p.Source), nil
		},
	})
	userType.AddFieldConfig("username", &graphql.Field{
		Type: graphql.NewNonNull(graphql.String),
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			switch u := p.Source.(type) {
			case *models.User:
				return u.Username, nil
			case *models.UserSummary:
				return u.Username, nil
			}
			return "", nil
		},
	})
	userType.AddFieldConfig("name", &graphql.Field{
		Type: graphql.String,
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			switch u := p.Source.(type) {
			case *models.User:
				return u.Name, nil
			case *models.UserSummary:
				return u.Name, nil
			}
			return "", nil
		},
	})
	userType.AddFieldConfig("notes", &graphql.Field{
		Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(noteType))),
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			id := ownerID(p.Source)
			if id == "" {
				return []*models.Note{}, nil
			}
			list, err := r.notes.ListNotesByOwner(p.Context, id)
			if err != nil {
				return nil, r.fail(p, err)
			}
			return list, nil
		},
	})

	noteType.AddFieldConfig("id", &graphql.Field{
		Type: graphql.NewNonNull(graphql.ID),
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			return p.Source.(*models.Note).ID, nil
		},
	})
	noteType.AddFieldConfig("content", &graphql.Field{
		Type: graphql.NewNonNull(graphql.String),
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			return p.Source.(*models.Note).Content, nil
		},
	})
	noteType.AddFieldConfig("important", &graphql.Field{
		Type: graphql.NewNonNull(graphql.Boolean),
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			return p.Source.(*models.Note).Important, nil
		},
	})
	noteType.AddFieldConfig("comments", &graphql.Field{
		Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(graphql.String))),
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			if c := p.Source.(*models.Note).Comments; c != nil {
				return c, nil
			}
			return []string{}, nil
		},
	})
	noteType.AddFieldConfig("createdAt", &graphql.Field{
		Type: graphql.String,
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			return formatTime(p.Source.(*models.Note).CreatedAt), nil
		},
	})
	noteType.AddFieldConfig("updatedAt", &graphql.Field{
		Type: graphql.String,
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			return formatTime(p.Source.(*models.Note).UpdatedAt), nil
		},
	})
	noteType.AddFieldConfig("user", &graphql.Field{
		Type: userType,
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			if owner := p.Source.(*models.Note).Owner; owner != nil {
				return owner, nil
			}
			return nil, nil
		},
	})

	authPayloadType := graphql.NewObject(graphql.ObjectConfig{
		Name: "AuthPayload",
		Fields: graphql.Fields{
			"token": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"user":  &graphql.Field{Type: graphql.NewNonNull(userType)},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"noteCount": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Int),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					n, err := r.notes.CountNotes(p.Context)
					if err != nil {
						return nil, r.fail(p, err)
					}
					return int(n), nil
				},
			},
			"allNotes": &graphql.Field{
				Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(noteType))),
				Args: graphql.FieldConfigArgument{
					"important": &graphql.ArgumentConfig{Type: graphql.Boolean},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					filter := models.NoteFilter{NewestFirst: true}
					if v, ok := p.Args["important"].(bool); ok {
						filter.Important = &v
					}
					list, err := r.notes.ListNotes(p.Context, filter)
					if err != nil {
						return nil, r.fail(p, err)
					}
					return list, nil
				},
			},
			"findNote": &graphql.Field{
				Type: noteType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					note, err := r.notes.GetNote(p.Context, p.Args["id"].(string))
					if err != nil {
						if errors.Is(err, common.ErrorNotFound) {
							return nil, nil
						}
						return nil, r.fail(p, err)
					}
					return note, nil
				},
			},
			"allUsers": &graphql.Field{
				Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(userType))),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					list, err := r.users.ListUsers(p.Context)
					if err != nil {
						return nil, r.fail(p, err)
					}
					return list, nil
				},
			},
			"me": &graphql.Field{
				Type: userType,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					user, err := r.users.Me(p.Context, auth.IdentityFromContext(p.Context))
					if err != nil {
						return nil, r.fail(p, err)
					}
					if user == nil {
						return nil, nil
					}
					return user, nil
				},
			},
		},
	})

	mutationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"addNote": &graphql.Field{
				Type: graphql.NewNonNull(noteType),
				Args: graphql.FieldConfigArgument{
					"content":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"important": &graphql.ArgumentConfig{Type: graphql.Boolean, DefaultValue: false},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					important, _ := p.Args["important"].(bool)
					note, err := r.notes.CreateNote(p.Context, auth.IdentityFromContext(p.Context),
						p.Args["content"].(string), important)
					if err != nil {
						return nil, r.fail(p, err)
					}
					return note, nil
				},
			},
			"toggleImportance": &graphql.Field{
				Type: graphql.NewNonNull(noteType),
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					note, err := r.notes.ToggleImportance(p.Context, auth.IdentityFromContext(p.Context),
						p.Args["id"].(string))
					if err != nil {
						return nil, r.fail(p, err)
					}
					return note, nil
				},
			},
			"deleteNote": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Boolean),
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					err := r.notes.DeleteNote(p.Context, auth.IdentityFromContext(p.Context), p.Args["id"].(string))
					if err != nil {
						return nil, r.fail(p, err)
					}
					return true, nil
				},
			},
			"addComment": &graphql.Field{
				Type: graphql.NewNonNull(noteType),
				Args: graphql.FieldConfigArgument{
					"id":      &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"comment": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					note, err := r.notes.AddComment(p.Context, auth.IdentityFromContext(p.Context),
						p.Args["id"].(string), p.Args["comment"].(string))
					if err != nil {
						return nil, r.fail(p, err)
					}
					return note, nil
				},
			},
			"createUser": &graphql.Field{
				Type: graphql.NewNonNull(userType),
				Args: graphql.FieldConfigArgument{
					"username": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"name":     &graphql.ArgumentConfig{Type: graphql.String},
					"password": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					name, _ := p.Args["name"].(string)
					user, err := r.users.Register(p.Context, p.Args["username"].(string), name,
						p.Args["password"].(string))
					if err != nil {
						return nil, r.fail(p, err)
					}
					return user, nil
				},
			},
			"login": &graphql.Field{
				Type: graphql.NewNonNull(authPayloadType),
				Args: graphql.FieldConfigArgument{
					"username": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"password": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					result, err := r.users.Login(p.Context, p.Args["username"].(string), p.Args["password"].(string))
					if err != nil {
						return nil, r.fail(p, err)
					}
					return map[string]interface{}{
						"token": result.Token,
						"user":  &models.UserSummary{ID: result.UserID, Username: result.Username, Name: result.Name},
					}, nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{Query: queryType, Mutation: mutationType})
}
