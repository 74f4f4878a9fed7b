package scan

import (
	"fmt"

	"github.com/dgrsk/pathtines/internal/logx"
	"github.com/dgrsk/pathtines/internal/urlutil"
)

// errorLabels gives classifyError's ErrorKind the text the warning line
// in spec.md §4.6 names.
var errorLabels = map[ErrorKind]string{
	ErrServerDisconnected: "server-disconnected",
	ErrClientOS:           "client-os",
	ErrTimeout:            "timeout",
	ErrOther:              "other",
}

// Classifier turns a fetch Outcome into progress advancement, a
// target's error-budget accounting, and the hits log line, per
// spec.md §4.6.
type Classifier struct {
	progress *Progress
	hits     logEntry
	scan     logEntry
}

// logEntry is the subset of *logrus.Entry the classifier needs; kept as
// an interface so tests can stub it without building a real logger.
type logEntry interface {
	Warn(args ...interface{})
	Info(args ...interface{})
}

// NewClassifier wires a classifier against the shared progress counter
// and the SCAN/URL named loggers (SPEC_FULL.md §2.2, §4).
func NewClassifier(progress *Progress) *Classifier {
	return &Classifier{
		progress: progress,
		hits:     logx.Named("URL"),
		scan:     logx.Named("SCAN"),
	}
}

// ClassifyResult is what the classifier decided for one outcome: whether
// the owning target should now be blocked.
type ClassifyResult struct {
	Blocked bool
}

// Classify applies spec.md §4.6's rules for one target/outcome pair and
// advances the shared Progress counter by exactly one, regardless of
// outcome kind.
func (c *Classifier) Classify(t *Target, url string, out Outcome) ClassifyResult {
	defer c.progress.Add(1)

	if out.Kind != OutcomeCancelled && !t.Running() {
		return ClassifyResult{}
	}

	switch out.Kind {
	case OutcomeCancelled:
		return ClassifyResult{}

	case OutcomeError:
		return c.classifyError(t, url, out)

	case OutcomeResponse:
		c.classifyResponse(t, url, out)
		return ClassifyResult{}

	default:
		return ClassifyResult{}
	}
}

func (c *Classifier) classifyError(t *Target, url string, out Outcome) ClassifyResult {
	label := errorLabels[out.ErrKind]
	c.scan.Warn(fmt.Sprintf("%s | %s: %v", t.Host(), label, out.Err))

	t.IncrementErrors()
	if !t.ErrorBudgetExceeded() {
		return ClassifyResult{}
	}

	c.scan.Warn(fmt.Sprintf("Giving up on target %s", t.Host()))
	return ClassifyResult{Blocked: true}
}

func (c *Classifier) classifyResponse(t *Target, url string, out Outcome) {
	if out.Status == 404 {
		return
	}

	size := urlutil.HumanSize(out.ContentLength)
	var line string
	switch out.Status {
	case 301, 302:
		if out.Location != "" {
			line = fmt.Sprintf("%d - %s\t-\t%s -> %s", out.Status, size, out.FinalURL, out.Location)
		} else {
			line = fmt.Sprintf("%d - %s\t-\t%s", out.Status, size, out.FinalURL)
		}
	default:
		line = fmt.Sprintf("%d - %s\t-\t%s", out.Status, size, out.FinalURL)
	}

	if err := t.SaveHit(line); err != nil {
		c.scan.Warn(fmt.Sprintf("%s | failed to write hit: %v", t.Host(), err))
	}
	c.hits.Info(fmt.Sprintf("%s | %s", t.Host(), line))
}
