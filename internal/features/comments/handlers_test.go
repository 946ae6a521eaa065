package comments

import (
	"testing"

	"github.com/rudeps/RudepsBot/internal/session"
)

func TestClaimSubmission(t *testing.T) {
	const userID int64 = 100

	h := &Handler{sessions: session.NewStore()}

	if h.claimSubmission(userID) {
		t.Error("фото без шага ожидания не должно засчитываться")
	}

	h.sessions.Set(userID, session.StepWaitingPhoto)
	if !h.claimSubmission(userID) {
		t.Error("фото на шаге ожидания должно засчитываться")
	}
	if h.sessions.InDialog(userID) {
		t.Error("шаг ожидания должен сниматься после зачёта")
	}

	// Повторная доставка того же фото
	if h.claimSubmission(userID) {
		t.Error("второе фото подряд не должно засчитываться")
	}
}

func TestClaimSubmissionOtherStep(t *testing.T) {
	const userID int64 = 200

	h := &Handler{sessions: session.NewStore()}
	h.sessions.Set(userID, session.StepWithdrawAmount)

	if h.claimSubmission(userID) {
		t.Error("фото на чужом шаге диалога не должно засчитываться")
	}
	if !h.sessions.Is(userID, session.StepWithdrawAmount) {
		t.Error("чужой шаг диалога не должен сбрасываться")
	}
}
