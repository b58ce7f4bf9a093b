package assessment

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/bridgetwin/internal/classifier"
	"github.com/example/bridgetwin/internal/metrics"
	"github.com/example/bridgetwin/internal/telemetry"
)

// Branch is the strategy chosen for one assessment.
type Branch int

const (
	BranchRules Branch = iota
	BranchModel
	BranchLLM
)

func (b Branch) Source() Source {
	switch b {
	case BranchLLM:
		return SourceLLM
	case BranchModel:
		return SourceModel
	default:
		return SourceRules
	}
}

// Availability is a snapshot of the optional capabilities at call time.
type Availability struct {
	Credential string
	Model      classifier.Model
}

// Select picks the branch for a snapshot: LLM if a credential is present,
// then the trained classifier, then the threshold rules.
func Select(a Availability) Branch {
	switch {
	case a.Credential != "":
		return BranchLLM
	case a.Model != nil:
		return BranchModel
	default:
		return BranchRules
	}
}

// ModelSource supplies the optional classifier capability.
type ModelSource interface {
	Model() (classifier.Model, bool)
}

// Options configures an Engine.
type Options struct {
	Chat          ChatClient
	Models        ModelSource
	CredentialEnv string
	// LookupEnv defaults to os.LookupEnv.
	LookupEnv func(string) (string, bool)
	Logger    *zap.Logger
	Service   string
}

// Engine produces verdicts for telemetry records.
type Engine struct {
	chat          ChatClient
	models        ModelSource
	credentialEnv string
	lookupEnv     func(string) (string, bool)
	logger        *zap.Logger
	service       string
	now           func() time.Time
}

// Defaults for an engine built without a Chat client.
const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-4o"
	DefaultTimeout = 30 * time.Second
)

// NewEngine returns an engine. A nil Chat uses an OpenAIClient with the defaults;
// a nil Models source means no classifier.
func NewEngine(opts Options) *Engine {
	e := &Engine{
		chat:          opts.Chat,
		models:        opts.Models,
		credentialEnv: opts.CredentialEnv,
		lookupEnv:     opts.LookupEnv,
		logger:        opts.Logger,
		service:       opts.Service,
		now:           time.Now,
	}
	if e.chat == nil {
		e.chat = NewOpenAIClient(DefaultBaseURL, DefaultModel, DefaultTimeout)
	}
	if e.credentialEnv == "" {
		e.credentialEnv = "OPENAI_API_KEY"
	}
	if e.lookupEnv == nil {
		e.lookupEnv = os.LookupEnv
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	if e.models == nil {
		e.models = classifier.AbsentHandle()
	}
	if e.service == "" {
		e.service = "assessment"
	}
	return e
}

// Availability reads the credential and classifier state. It is evaluated on
// every Assess call so changes to the environment take effect immediately.
func (e *Engine) Availability() Availability {
	var a Availability
	if v, ok := e.lookupEnv(e.credentialEnv); ok {
		a.Credential = strings.TrimSpace(v)
	}
	if m, ok := e.models.Model(); ok {
		a.Model = m
	}
	return a
}

// Assess produces a verdict for record. An error is returned only when the
// LLM branch was selected and the call failed.
func (e *Engine) Assess(ctx context.Context, record telemetry.TelemetryRecord) (Verdict, error) {
	avail := e.Availability()
	branch := Select(avail)

	var (
		v   Verdict
		err error
	)
	switch branch {
	case BranchLLM:
		v, err = e.assessLLM(ctx, avail.Credential, record)
	case BranchModel:
		v = e.assessModel(avail.Model, record)
	default:
		v = e.assessRules(record)
	}
	if err != nil {
		metrics.RecordAssessmentFailure(e.service, string(branch.Source()))
		e.logger.Error("assessment failed",
			zap.String("source", string(branch.Source())),
			zap.String("location", record.Location),
			zap.Error(err),
		)
		return Verdict{}, err
	}

	v.ID = uuid.NewString()
	v.Source = branch.Source()
	v.AssessedAt = e.now().UTC()
	v.DemoMode = avail.Credential == ""

	metrics.RecordAssessment(e.service, string(v.Source), string(v.Status))
	e.logger.Info("assessment complete",
		zap.String("id", v.ID),
		zap.String("source", string(v.Source)),
		zap.String("status", string(v.Status)),
		zap.String("location", record.Location),
	)
	return v, nil
}

func (e *Engine) assessLLM(ctx context.Context, credential string, record telemetry.TelemetryRecord) (Verdict, error) {
	start := time.Now()
	text, err := e.chat.Complete(ctx, credential, record)
	metrics.RecordLLMCall(e.service, time.Since(start), err)
	if err != nil {
		return Verdict{}, err
	}

	status := StatusOf(record)
	headline := "Analysis Complete (AI-Powered)"
	if status == StatusCritical {
		headline = "Analysis Complete (AI-Powered): thresholds exceeded"
	}
	return Verdict{Status: status, Headline: headline, Detail: text}, nil
}

func (e *Engine) assessModel(m classifier.Model, record telemetry.TelemetryRecord) Verdict {
	features := record.Features()
	label := m.Predict(features)
	proba := m.PredictProba(features)
	confidence := max(proba[0], proba[1]) * 100

	var b strings.Builder
	fmt.Fprintf(&b, "Critical-class probability: %.1f%%.\n", proba[classifier.ClassCritical]*100)
	fmt.Fprintf(&b, "- Vibration (x/y/z): %.4f / %.4f / %.4f g (limit %.1fg)\n",
		record.VibrationX, record.VibrationY, record.VibrationZ, VibrationLimitG)
	fmt.Fprintf(&b, "- Strain: %.2f microstrain\n", record.Strain)
	fmt.Fprintf(&b, "- Tilt: %.2f° (limit %.1f°)\n", record.Tilt, TiltLimitDegrees)
	for _, f := range Evaluate(record) {
		fmt.Fprintf(&b, "- %s\n", f.Message)
	}

	v := Verdict{
		Status:     StatusSafe,
		Headline:   "STATUS GREEN: model predicts nominal structural behaviour.",
		Detail:     strings.TrimRight(b.String(), "\n"),
		Confidence: &confidence,
	}
	if label == classifier.ClassCritical {
		v.Status = StatusCritical
		v.Headline = "CRITICAL ALERT: model predicts structural distress. Immediate inspection required."
	}
	return v
}

func (e *Engine) assessRules(record telemetry.TelemetryRecord) Verdict {
	findings := Evaluate(record)
	band := telemetry.HealthBand(record.HealthScore)

	if len(findings) == 0 {
		return Verdict{
			Status:   StatusSafe,
			Headline: "STATUS GREEN: All systems nominal.",
			Detail: fmt.Sprintf("Structure operating within designed safety margins. Health score %d (%s).",
				record.HealthScore, band),
		}
	}

	var b strings.Builder
	b.WriteString("Detailed insights:\n")
	for _, f := range findings {
		fmt.Fprintf(&b, "- %s\n", f.Message)
	}
	fmt.Fprintf(&b, "Health score %d (%s).", record.HealthScore, band)
	return Verdict{
		Status:   StatusCritical,
		Headline: "CRITICAL ALERT: readings above safety thresholds. Immediate inspection required.",
		Detail:   b.String(),
	}
}
