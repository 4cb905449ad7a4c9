package service

import (
	"context"

	"github.com/DevRickLin/channel-summariser/internal/biz/domain"
)

// Interaction is one platform-side invocation: a slash command, a text
// command or a button click. Platform servers implement it per event.
type Interaction interface {
	// User returns the person who triggered the interaction
	User() domain.Identity

	// Channel returns the channel the interaction came from
	Channel() domain.Identity

	// Defer acknowledges the interaction inside the platform's response
	// window; the final content follows later through Send*/Edit
	Defer(ctx context.Context, private bool) error

	// SendPrivate delivers a reply only the requester can see
	SendPrivate(ctx context.Context, reply *domain.Reply) error

	// SendPublic delivers a reply to the interaction's channel
	SendPublic(ctx context.Context, reply *domain.Reply) error

	// Edit replaces the message this interaction owns (the private summary,
	// or the message carrying the clicked button)
	Edit(ctx context.Context, reply *domain.Reply) error
}
