package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"flux-backend/internal/task/domain"
	"flux-backend/internal/task/repository"
	"flux-backend/pkg/mailer"
	"flux-backend/pkg/metrics"

	log "github.com/sirupsen/logrus"
)

const (
	ReportTestCases      = "test_cases"
	ReportRequirementDoc = "requirement_doc"
	ReportScrumEmail     = "scrum_email"
)

var ErrDraftsNotConfigured = errors.New("draft mailbox is not configured")

// reportUsecase implements ReportUsecase interface
type reportUsecase struct {
	taskRepo repository.TaskRepository
	analyzer Analyzer
	drafts   DraftSaver
	from     string
	to       []string
	now      func() time.Time
}

// NewReportUsecase creates a new instance of reportUsecase
func NewReportUsecase(taskRepo repository.TaskRepository, analyzer Analyzer) ReportUsecase {
	return &reportUsecase{
		taskRepo: taskRepo,
		analyzer: analyzer,
		now:      time.Now,
	}
}

func (u *reportUsecase) SetDraftSaver(s DraftSaver, from, to string) {
	u.drafts = s
	u.from = from
	u.to = nil
	for _, addr := range strings.Split(to, ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			u.to = append(u.to, addr)
		}
	}
}

func (u *reportUsecase) TestCases(ctx context.Context) (*Report, error) {
	tasks, err := u.taskRepo.FilterByStatus(ctx, domain.StatusDone)
	if err != nil {
		return nil, err
	}
	now := u.now()
	report := &Report{Kind: ReportTestCases, TaskCount: len(tasks), CreatedAt: now}
	if len(tasks) == 0 {
		return nothingToGenerate(report), nil
	}

	content, err := u.analyzer.GenerateTestCases(ctx, tasks)
	metrics.Stage(report.Kind, err)
	if err != nil {
		return nothingOrError(report, err)
	}
	report.Generated = true
	report.Content = content
	report.Filename = fmt.Sprintf("test_cases_%s.csv", now.Format("20060102_150405"))
	return report, nil
}

func (u *reportUsecase) RequirementDoc(ctx context.Context, statuses []string) (*Report, error) {
	wanted := map[domain.Status]bool{}
	for _, v := range statuses {
		s, err := domain.ParseStatus(v)
		if err != nil {
			return nil, err
		}
		wanted[s] = true
	}
	if len(wanted) == 0 {
		wanted[domain.StatusDone] = true
	}

	all, err := u.taskRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	tasks := make([]*domain.Task, 0, len(all))
	for _, t := range all {
		if wanted[t.Status] {
			tasks = append(tasks, t)
		}
	}

	now := u.now()
	report := &Report{Kind: ReportRequirementDoc, TaskCount: len(tasks), CreatedAt: now}
	if len(tasks) == 0 {
		return nothingToGenerate(report), nil
	}
	content, err := u.analyzer.GenerateRequirementDoc(ctx, tasks)
	metrics.Stage(report.Kind, err)
	if err != nil {
		return nothingOrError(report, err)
	}
	report.Generated = true
	report.Content = content
	report.Filename = fmt.Sprintf("requirements_%s.md", now.Format("20060102"))
	return report, nil
}

func (u *reportUsecase) ScrumEmail(ctx context.Context, req ScrumEmailRequest) (*Report, error) {
	if req.SaveDraft && u.drafts == nil {
		return nil, domain.NewValidationError(ErrDraftsNotConfigured, "saving drafts requires IMAP settings")
	}

	now := u.now()
	startStr := req.Start
	if startStr == "" {
		startStr = weekStart(now).Format(dateLayout)
	}
	start, end, err := parseDateRange(startStr, req.End, now)
	if err != nil {
		return nil, err
	}

	inRange, err := u.taskRepo.FilterByDateRange(ctx, start, end)
	if err != nil {
		return nil, err
	}
	tasks := make([]*domain.Task, 0, len(inRange))
	for _, t := range inRange {
		if t.Status == domain.StatusDone {
			tasks = append(tasks, t)
		}
	}

	report := &Report{
		Kind:       ReportScrumEmail,
		TaskCount:  len(tasks),
		RangeStart: start.Format(dateLayout),
		RangeEnd:   end.Format(dateLayout),
		CreatedAt:  now,
	}
	if len(tasks) == 0 {
		return nothingToGenerate(report), nil
	}
	content, err := u.analyzer.GenerateScrumEmail(ctx, tasks, report.RangeStart, report.RangeEnd)
	metrics.Stage(report.Kind, err)
	if err != nil {
		return nothingOrError(report, err)
	}
	report.Generated = true
	report.Content = content
	report.Filename = fmt.Sprintf("scrum_update_%s.eml", now.Format("20060102"))

	draft := mailer.DraftFromGenerated(content)
	draft.From = u.from
	draft.To = u.to
	draft.Date = now
	msg, err := mailer.Compose(draft)
	if err != nil {
		return nil, fmt.Errorf("failed to compose scrum email: %w", err)
	}
	report.Message = msg

	if req.SaveDraft {
		err := u.drafts.SaveDraft(ctx, msg)
		metrics.Stage("draft", err)
		if err != nil {
			log.Errorf("[Reports] Failed to save scrum email draft: %v", err)
			report.DraftError = err.Error()
		} else {
			report.DraftSaved = true
		}
	}
	return report, nil
}

func nothingToGenerate(report *Report) *Report {
	log.Infof("[Reports] No tasks for %s", report.Kind)
	return report
}

// nothingOrError turns an empty selection reported by the analyzer into an
// ungenerated report and passes any other error through.
func nothingOrError(report *Report, err error) (*Report, error) {
	if errors.Is(err, domain.ErrNothingToGenerate) {
		return nothingToGenerate(report), nil
	}
	return nil, err
}
