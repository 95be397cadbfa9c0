package validation

import (
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"

	types "github.com/yungbote/coursetree/internal/domain"
	"github.com/yungbote/coursetree/internal/modules/ingestion/tree"
)

type Options struct {
	// Strict makes warnings block.
	Strict bool
	// TakenSlugs holds slugs already owned by another creator.
	TakenSlugs map[string]bool
}

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Validate returns every violation in c: course level first, then a
// depth-first walk in current sibling order.
func Validate(c *tree.Course, opts Options) []Violation {
	w := &walker{opts: opts}
	if c == nil {
		w.add(tree.LevelCourse, 0, MissingField, "course", "course tree is empty")
		return w.out
	}
	w.course(c)
	return w.out
}

type walker struct {
	opts Options
	out  []Violation
}

func (w *walker) add(path string, chapter int, kind Kind, field, detail string) {
	w.out = append(w.out, Violation{
		Path:     path,
		Kind:     kind,
		Severity: SeverityOf(kind),
		Detail:   detail,
		Chapter:  chapter,
		Field:    field,
	})
}

func (w *walker) required(path string, chapter int, field, value string) {
	if strings.TrimSpace(value) == "" {
		w.add(path, chapter, MissingField, field, field+" is required")
	}
}

func (w *walker) course(c *tree.Course) {
	const p = tree.LevelCourse
	w.required(p, 0, "title", c.Title)
	w.required(p, 0, "slug", c.Slug)
	if c.Slug != "" && !slugPattern.MatchString(c.Slug) {
		w.add(p, 0, InvalidValue, "slug", fmt.Sprintf("slug %q must be lowercase words joined by hyphens", c.Slug))
	}
	if c.Slug != "" && w.opts.TakenSlugs[c.Slug] {
		w.add(p, 0, DuplicateSlug, "slug", fmt.Sprintf("slug %q belongs to another creator", c.Slug))
	}

	switch c.Visibility {
	case "":
		w.add(p, 0, MissingField, "visibility", "visibility is required")
	case types.VisibilityPrivate, types.VisibilityUnlisted, types.VisibilityPublic:
	default:
		w.add(p, 0, InvalidValue, "visibility", fmt.Sprintf("unknown visibility %q", c.Visibility))
	}
	switch c.Status {
	case "":
		w.add(p, 0, MissingField, "status", "status is required")
	case types.StatusDraft, types.StatusPublished, types.StatusArchived:
	default:
		w.add(p, 0, InvalidValue, "status", fmt.Sprintf("unknown status %q", c.Status))
	}
	switch {
	case c.Version == nil:
		w.add(p, 0, MissingField, "version", "version is required")
	case *c.Version < 1:
		w.add(p, 0, InvalidValue, "version", fmt.Sprintf("version %d must be at least 1", *c.Version))
	}
	if c.EstimatedMinutes != nil && *c.EstimatedMinutes < 0 {
		w.add(p, 0, InvalidValue, "estimated_minutes", "estimated_minutes must not be negative")
	}
	w.url(p, "banner.url", c.BannerURL)
	w.url(p, "icon.url", c.IconURL)

	for _, d := range c.Dangling {
		w.add(fmt.Sprintf("course/chapters/%s", d.Folder), danglingChapter(c, d), DanglingChapter, "",
			fmt.Sprintf("%s: %s", d.File, d.Reason))
	}

	if len(c.Chapters) == 0 {
		w.add(p, 0, MissingField, "chapters", "course has no chapters")
		return
	}
	ixs := make([]int, len(c.Chapters))
	for i, ch := range c.Chapters {
		ixs[i] = ch.Ix
	}
	w.contiguous(p, 0, tree.LevelChapter, ixs)
	uniq := uniqueIx(ixs)
	for _, ch := range c.Chapters {
		w.chapter(p+"/"+tree.Segment(tree.LevelChapter, ch.Ix, ch.DocOrder, uniq[ch.Ix]), ch)
	}
}

// danglingChapter attributes a dangling document to the tree chapter whose
// folder number it duplicates. Any other dangling document is Unattached.
func danglingChapter(c *tree.Course, d tree.DanglingChapter) int {
	if !d.Duplicate {
		return Unattached
	}
	for _, ch := range c.Chapters {
		if ch.DocOrder == d.DocOrder {
			return ch.Ix
		}
	}
	return Unattached
}

func (w *walker) url(path, field, raw string) {
	if raw == "" {
		return
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		w.add(path, 0, InvalidURL, field, fmt.Sprintf("%s %q is not an absolute http(s) URL", field, raw))
	}
}

func (w *walker) chapter(p string, ch *tree.Chapter) {
	n := ch.Ix
	w.required(p, n, "title", ch.Title)
	w.required(p, n, "summary", ch.Summary)
	if ch.Incomplete {
		w.add(p, n, IncompleteChapter, "", "chapter is in the outline but has no chapter document")
		return
	}
	if len(ch.Sections) == 0 {
		w.add(p, n, IncompleteChapter, "", "chapter has no sections")
		return
	}
	ixs := make([]int, len(ch.Sections))
	for i, s := range ch.Sections {
		ixs[i] = s.Ix
	}
	w.contiguous(p, n, tree.LevelSection, ixs)
	uniq := uniqueIx(ixs)
	for _, s := range ch.Sections {
		w.section(p+"/"+tree.Segment(tree.LevelSection, s.Ix, s.DocOrder, uniq[s.Ix]), n, s)
	}
}

func (w *walker) section(p string, chapter int, s *tree.Section) {
	w.required(p, chapter, "title", s.Title)
	w.required(p, chapter, "summary", s.Summary)
	if s.Stub {
		w.add(p, chapter, IncompleteChapter, "", "section is in the outline but missing from the chapter document")
		return
	}
	if len(s.Learnings) == 0 {
		w.add(p, chapter, IncompleteChapter, "", "section has no learnings")
		return
	}
	ixs := make([]int, len(s.Learnings))
	for i, l := range s.Learnings {
		ixs[i] = l.Ix
	}
	w.contiguous(p, chapter, tree.LevelLearning, ixs)
	uniq := uniqueIx(ixs)
	for _, l := range s.Learnings {
		w.learning(p+"/"+tree.Segment(tree.LevelLearning, l.Ix, l.DocOrder, uniq[l.Ix]), chapter, l)
	}
}

func (w *walker) learning(p string, chapter int, l *tree.Learning) {
	w.required(p, chapter, "title", l.Title)
	w.required(p, chapter, "body", l.Body)

	switch l.State {
	case "":
		w.add(p, chapter, MissingField, "state", "state is required")
	case types.LearningStateDraft, types.LearningStatePublished:
	default:
		w.add(p, chapter, InvalidValue, "state", fmt.Sprintf("unknown state %q", l.State))
	}

	lo, hi := types.DefaultMinQuestions, types.DefaultMaxQuestions
	if l.MinQuestions == nil {
		w.add(p, chapter, MissingField, "min_questions", "min_questions is required")
	} else {
		lo = *l.MinQuestions
	}
	if l.MaxQuestions == nil {
		w.add(p, chapter, MissingField, "max_questions", "max_questions is required")
	} else {
		hi = *l.MaxQuestions
	}
	if lo < types.DefaultMinQuestions || hi > types.DefaultMaxQuestions || lo > hi {
		w.add(p, chapter, InvalidValue, "question_bounds",
			fmt.Sprintf("bounds [%d,%d] must satisfy %d <= min <= max <= %d",
				lo, hi, types.DefaultMinQuestions, types.DefaultMaxQuestions))
	}
	for i, qr := range l.QuickReplies {
		if strings.TrimSpace(qr) == "" {
			w.add(p, chapter, MissingField, "quick_replies", fmt.Sprintf("quick reply %d is empty", i+1))
		}
	}

	if n := len(l.Questions); n < lo || n > hi {
		w.add(p, chapter, QuestionCountOutOfBounds, "",
			fmt.Sprintf("%d questions, want between %d and %d", n, lo, hi))
	}
	if len(l.Questions) == 0 {
		return
	}
	ixs := make([]int, len(l.Questions))
	for i, q := range l.Questions {
		ixs[i] = q.Ix
	}
	w.contiguous(p, chapter, tree.LevelQuestion, ixs)
	uniq := uniqueIx(ixs)
	for _, q := range l.Questions {
		w.question(p+"/"+tree.Segment(tree.LevelQuestion, q.Ix, q.DocOrder, uniq[q.Ix]), chapter, q)
	}
}

func isChoice(qType string) bool {
	switch qType {
	case types.QuestionMCQ, types.QuestionMulti, types.QuestionTrueFalse:
		return true
	}
	return false
}

func knownType(qType string) bool {
	for _, t := range types.QuestionTypes {
		if t == qType {
			return true
		}
	}
	return false
}

func (w *walker) question(p string, chapter int, q *tree.Question) {
	w.required(p, chapter, "prompt", q.Prompt)
	switch {
	case q.Type == "":
		w.add(p, chapter, MissingField, "type", "type is required")
	case !knownType(q.Type):
		w.add(p, chapter, InvalidValue, "type", fmt.Sprintf("unknown question type %q", q.Type))
	}
	switch q.Difficulty {
	case "", types.DifficultyEasy, types.DifficultyMedium, types.DifficultyHard:
	default:
		w.add(p, chapter, InvalidValue, "difficulty", fmt.Sprintf("unknown difficulty %q", q.Difficulty))
	}
	// metadata is stored as a JSON column
	if q.Metadata != nil {
		if _, err := json.Marshal(q.Metadata); err != nil {
			w.add(p, chapter, InvalidValue, "metadata", fmt.Sprintf("metadata is not JSON-encodable: %v", err))
		}
	}

	correct := 0
	for _, a := range q.Answers {
		if a.IsCorrect {
			correct++
		}
	}
	switch q.Type {
	case types.QuestionMCQ, types.QuestionTrueFalse:
		if correct != 1 {
			w.add(p, chapter, CorrectnessRuleViolated, "",
				fmt.Sprintf("%s needs exactly one correct answer, has %d", q.Type, correct))
		}
	case types.QuestionMulti:
		if correct < 1 {
			w.add(p, chapter, CorrectnessRuleViolated, "", "multi needs at least one correct answer, has 0")
		}
	}

	if len(q.Answers) == 0 {
		return
	}
	ixs := make([]int, len(q.Answers))
	for i, a := range q.Answers {
		ixs[i] = a.Ix
	}
	w.contiguous(p, chapter, tree.LevelAnswer, ixs)
	uniq := uniqueIx(ixs)
	for _, a := range q.Answers {
		ap := p + "/" + tree.Segment(tree.LevelAnswer, a.Ix, a.DocOrder, uniq[a.Ix])
		w.required(ap, chapter, "content", a.Content)
		if isChoice(q.Type) && !a.IsCorrect && strings.TrimSpace(a.Feedback) == "" {
			w.add(ap, chapter, MissingFeedback, "feedback", "incorrect option has no feedback")
		}
	}
}

// contiguous reports children whose ix values are not exactly 1..n.
func (w *walker) contiguous(p string, chapter int, level string, ixs []int) {
	if isContiguous(ixs) {
		return
	}
	w.add(p, chapter, NonContiguousIndex, level,
		fmt.Sprintf("%s indexes %v are not 1..%d", level, ixs, len(ixs)))
}

func isContiguous(ixs []int) bool {
	sorted := append([]int(nil), ixs...)
	sort.Ints(sorted)
	for i, v := range sorted {
		if v != i+1 {
			return false
		}
	}
	return true
}

func uniqueIx(ixs []int) map[int]bool {
	seen := make(map[int]int, len(ixs))
	for _, v := range ixs {
		seen[v]++
	}
	out := make(map[int]bool, len(seen))
	for v, n := range seen {
		out[v] = n == 1
	}
	return out
}
