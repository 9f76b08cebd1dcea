// Package graph serves the GraphQL API used by the web client.
package graph

import (
	_ "embed"
	"net/http"

	"worldchat/internal/repository"
	"worldchat/internal/service"

	graphql "github.com/graph-gophers/graphql-go"
	"github.com/graph-gophers/graphql-go/relay"
)

//go:embed schema.graphql
var schemaSDL string

// OnlineChecker reports live connection state; *presence.Tracker implements it.
type OnlineChecker interface {
	Online(userID string) bool
	OnlineCount(userIDs []string) int
}

type Deps struct {
	Users    *repository.UserRepository
	Channels *repository.ChannelRepository
	Worlds   *repository.WorldRepository
	Activity *service.ActivityService
	Online   OnlineChecker
}

// NewSchema parses the schema and binds it to resolvers built from d.
func NewSchema(d Deps) (*graphql.Schema, error) {
	return graphql.ParseSchema(schemaSDL, &Resolver{d: d})
}

// Handler serves POST /graphql. Identity must already be on the request context.
func Handler(schema *graphql.Schema) http.Handler {
	return &relay.Handler{Schema: schema}
}
