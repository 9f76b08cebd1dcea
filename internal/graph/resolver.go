package graph

import (
	"context"
	"errors"

	"worldchat/internal/auth"
	"worldchat/internal/models"
	"worldchat/internal/service"

	graphql "github.com/graph-gophers/graphql-go"
	"gorm.io/gorm"
)

// Resolver is the root for both queries and mutations. Every field requires an identity.
type Resolver struct {
	d Deps
}

func requireIdentity(ctx context.Context) (auth.Identity, error) {
	id, ok := auth.IdentityFromContext(ctx)
	if !ok {
		return auth.Identity{}, service.ErrUnauthorized
	}
	return id, nil
}

func (r *Resolver) Me(ctx context.Context) (*userResolver, error) {
	id, err := requireIdentity(ctx)
	if err != nil {
		return nil, err
	}
	return r.user(ctx, id.UserID)
}

func (r *Resolver) User(ctx context.Context, args struct{ ID graphql.ID }) (*userResolver, error) {
	if _, err := requireIdentity(ctx); err != nil {
		return nil, err
	}
	return r.user(ctx, string(args.ID))
}

// user returns nil without error for unknown ids.
func (r *Resolver) user(ctx context.Context, id string) (*userResolver, error) {
	u, err := r.d.Users.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &userResolver{r: r, u: u}, nil
}

func (r *Resolver) Users(ctx context.Context) ([]*userResolver, error) {
	if _, err := requireIdentity(ctx); err != nil {
		return nil, err
	}
	users, err := r.d.Users.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*userResolver, len(users))
	for i := range users {
		out[i] = &userResolver{r: r, u: &users[i]}
	}
	return out, nil
}

func (r *Resolver) Channels(ctx context.Context) ([]*channelResolver, error) {
	if _, err := requireIdentity(ctx); err != nil {
		return nil, err
	}
	channels, err := r.d.Channels.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*channelResolver, len(channels))
	for i := range channels {
		out[i] = &channelResolver{c: &channels[i]}
	}
	return out, nil
}

func (r *Resolver) Worlds(ctx context.Context) ([]*worldResolver, error) {
	if _, err := requireIdentity(ctx); err != nil {
		return nil, err
	}
	worlds, err := r.d.Worlds.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*worldResolver, len(worlds))
	for i := range worlds {
		out[i] = &worldResolver{r: r, w: &worlds[i]}
	}
	return out, nil
}

type operationResponse struct {
	success bool
}

func (o *operationResponse) Success() bool { return o.success }

func (r *Resolver) NotifyActivity(ctx context.Context, args struct{ ChannelID *string }) (*operationResponse, error) {
	if err := r.d.Activity.NotifyActivity(ctx, args.ChannelID); err != nil {
		return nil, err
	}
	return &operationResponse{success: true}, nil
}

type userResolver struct {
	r *Resolver
	u *models.User
}

func (u *userResolver) ID() graphql.ID { return graphql.ID(u.u.ID) }
func (u *userResolver) Name() string { return u.u.Name }
func (u *userResolver) Image() *string { return optional(u.u.Image) }
func (u *userResolver) Online() bool { return u.r.d.Online.Online(u.u.ID) }
func (u *userResolver) CreatedAt() graphql.Time {
	return graphql.Time{Time: u.u.CreatedAt}
}
func (u *userResolver) UpdatedAt() graphql.Time {
	return graphql.Time{Time: u.u.UpdatedAt}
}

func (u *userResolver) LastActivity() *graphql.Time {
	if u.u.LastActivity == nil {
		return nil
	}
	return &graphql.Time{Time: *u.u.LastActivity}
}

func (u *userResolver) ActiveChannel(ctx context.Context) (*channelResolver, error) {
	if u.u.ActiveChannel != nil {
		return &channelResolver{c: u.u.ActiveChannel}, nil
	}
	if u.u.ActiveChannelID == nil {
		return nil, nil
	}
	ch, err := u.r.d.Channels.GetByID(ctx, *u.u.ActiveChannelID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &channelResolver{c: ch}, nil
}

type channelResolver struct {
	c *models.Channel
}

func (c *channelResolver) ID() graphql.ID { return graphql.ID(c.c.ID) }
func (c *channelResolver) Name() string { return c.c.Name }
func (c *channelResolver) Description() *string { return optional(c.c.Description) }
func (c *channelResolver) CreatedAt() graphql.Time {
	return graphql.Time{Time: c.c.CreatedAt}
}

func (c *channelResolver) WorldID() *graphql.ID {
	if c.c.WorldID == nil {
		return nil
	}
	id := graphql.ID(*c.c.WorldID)
	return &id
}

type worldResolver struct {
	r *Resolver
	w *models.World
}

func (w *worldResolver) ID() graphql.ID { return graphql.ID(w.w.ID) }
func (w *worldResolver) Name() string { return w.w.Name }
func (w *worldResolver) Description() *string { return optional(w.w.Description) }
func (w *worldResolver) Image() *string { return optional(w.w.Image) }
func (w *worldResolver) OwnerID() graphql.ID { return graphql.ID(w.w.OwnerID) }
func (w *worldResolver) CreatedAt() graphql.Time {
	return graphql.Time{Time: w.w.CreatedAt}
}
func (w *worldResolver) MemberCount() int32 { return int32(len(w.w.Members)) }

func (w *worldResolver) Members() []*userResolver {
	out := make([]*userResolver, len(w.w.Members))
	for i := range w.w.Members {
		out[i] = &userResolver{r: w.r, u: &w.w.Members[i]}
	}
	return out
}

// OnlineCount counts members holding at least one live connection.
func (w *worldResolver) OnlineCount() int32 {
	ids := make([]string, len(w.w.Members))
	for i, m := range w.w.Members {
		ids[i] = m.ID
	}
	return int32(w.r.d.Online.OnlineCount(ids))
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
