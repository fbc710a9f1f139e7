package admin

import (
	"context"
	"time"

	"github.com/coolteam/cardshop/internal/logging"
)

// MsgNoticeSaved is shown briefly after a successful save.
const MsgNoticeSaved = "notice updated"

const noticeFeedback = 2 * time.Second

// Notice edits the site notice. Saving overwrites it wholesale.
type Notice struct {
	b      Backend
	logger *logging.Logger
	now    func() time.Time

	Content string
	Err     error

	savedAt time.Time
}

func newNotice(b Backend, logger *logging.Logger) *Notice {
	return &Notice{b: b, logger: logger, now: time.Now}
}

// Load fetches the current notice.
func (n *Notice) Load(ctx context.Context) error {
	resp := n.b.GetNotice(ctx)
	if err := resp.Error("failed to load notice"); err != nil {
		n.Err = err
		return err
	}
	n.Err = nil
	n.Content = resp.Data
	return nil
}

// Save replaces the notice with content.
func (n *Notice) Save(ctx context.Context, content string) error {
	if err := n.b.SetNotice(ctx, content).Error("failed to update notice"); err != nil {
		n.Err = err
		return err
	}
	n.Err = nil
	n.Content = content
	n.savedAt = n.now()
	n.logger.Info("notice updated", "length", len(content))
	return nil
}

// Status returns the transient confirmation, or "" once it has expired.
func (n *Notice) Status(now time.Time) string {
	if n.savedAt.IsZero() || now.Sub(n.savedAt) >= noticeFeedback {
		return ""
	}
	return MsgNoticeSaved
}

// Feedback returns how long the confirmation is shown.
func (n *Notice) Feedback() time.Duration {
	return noticeFeedback
}
