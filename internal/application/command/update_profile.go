package command

import (
	"context"
	"time"

	"github.com/koreline/koreline-hub/internal/domain/profile"
	"github.com/koreline/koreline-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// UPDATE PROFILE COMMAND
// Patches the actor's own profile. Nil fields are left untouched. The
// teaching flag and the token balance cannot be set here: the first comes
// from publishing a lesson, the second from trades and bill payments.
// ══════════════════════════════════════════════════════════════════════════════

// UpdateProfileCommand patches the actor's profile.
type UpdateProfileCommand struct {
	ActorID string

	FirstName *string
	LastName  *string
	BirthDate *time.Time
	Headline  *string
	Biography *string
}

// Validate validates the command.
func (c UpdateProfileCommand) Validate() error {
	if c.ActorID == "" {
		return shared.WrapError("profile", "Update", shared.ErrInvalidID, "actor id is required", nil)
	}
	if c.Headline != nil && len(*c.Headline) > profile.MaxHeadlineLen {
		return shared.WrapError("profile", "Update", shared.ErrValueOutOfRange, "headline too long", nil)
	}
	if c.Biography != nil && len(*c.Biography) > profile.MaxBiographyLen {
		return shared.WrapError("profile", "Update", shared.ErrValueOutOfRange, "biography too long", nil)
	}
	return nil
}

// UpdateProfileHandler handles the UpdateProfileCommand.
type UpdateProfileHandler struct {
	profiles profile.Repository
}

// NewUpdateProfileHandler creates a new UpdateProfileHandler.
func NewUpdateProfileHandler(profiles profile.Repository) *UpdateProfileHandler {
	return &UpdateProfileHandler{profiles: profiles}
}

// Handle executes the update profile command.
func (h *UpdateProfileHandler) Handle(ctx context.Context, cmd UpdateProfileCommand) (*profile.Profile, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	p, err := h.profiles.GetByID(ctx, cmd.ActorID)
	if err != nil {
		return nil, err
	}

	if cmd.FirstName != nil {
		p.FirstName = *cmd.FirstName
	}
	if cmd.LastName != nil {
		p.LastName = *cmd.LastName
	}
	if cmd.BirthDate != nil {
		p.BirthDate = cmd.BirthDate
	}
	if cmd.Headline != nil {
		p.Headline = *cmd.Headline
	}
	if cmd.Biography != nil {
		p.Biography = *cmd.Biography
	}
	p.UpdatedAt = time.Now().UTC()

	if err := h.profiles.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}
