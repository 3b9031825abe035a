package graphapi

import (
	"net/http"

	"github.com/dmitrijs2005/notehub/internal/logging"
	"github.com/dmitrijs2005/notehub/internal/server/services"
	"github.com/graphql-go/handler"
)

// NewHandler wires the schema into an http.Handler. The caller mounts it
// behind the identity middleware so resolvers see the bearer identity on
// the request context.
func NewHandler(us *services.UserService, ns *services.NoteService, l logging.Logger) (http.Handler, error) {
	schema, err := NewSchema(NewResolver(us, ns, l))
	if err != nil {
		return nil, err
	}
	return handler.New(&handler.Config{
		Schema: &schema,
		Pretty: true,
	}), nil
}
