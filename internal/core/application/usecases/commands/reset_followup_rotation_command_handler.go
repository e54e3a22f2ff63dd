package commands

import (
	"context"
)

type ResetFollowupRotationCommandHandler struct {
	uowFactory RotationUoWFactory
}

func NewResetFollowupRotationCommandHandler(uowFactory RotationUoWFactory) ResetFollowupRotationCommandHandler {
	return ResetFollowupRotationCommandHandler{uowFactory: uowFactory}
}

// Handle waits for in-flight assignments holding the pointer lock, then clears it.
func (h *ResetFollowupRotationCommandHandler) Handle(ctx context.Context, cmd ResetFollowupRotationCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	rotation := uow.RotationRepository()
	if _, err := rotation.LockPointer(ctx); err != nil {
		return err
	}
	if err := rotation.Reset(ctx); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
