package ai

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"wazivo/internal/config"
)

// cvPlaceholder marks where the CV text goes in a user prompt template
const cvPlaceholder = "%s"

// DefaultSystemPrompt frames the model as a career analyst returning JSON only
const DefaultSystemPrompt = `You are an experienced career coach and technical recruiter. You read CVs and produce honest, specific, actionable analysis.

Rules:
- Base every statement on the CV text. Do not invent employers, degrees or skills.
- Recommend real, currently available courses with working links where possible.
- Use lowercase enum values exactly as listed in the schema.
- Respond with a single JSON object and nothing else: no prose, no markdown fences.`

// DefaultUserPrompt asks for the analysis report; %s is replaced by the CV text
const DefaultUserPrompt = `Analyze the CV below and return JSON with this shape:

{
  "candidateSummary": {"name", "title", "experience", "keySkills": [], "location", "seniority": "intern|junior|mid|senior|lead|principal|executive"},
  "jobSearch": {"suggestedTitle": "a clean job title to search for, no company names", "alternativeTitles": [], "location"},
  "weaknessesAndGaps": [{"category", "gap", "impact", "priority": "high|medium|low"}],
  "recommendedCourses": [{"title", "platform", "duration", "level", "link", "addressesGap", "skills": [], "cost"}],
  "marketInsights": {"demandLevel": "high|medium|low", "avgSalaryRange", "trendingSkills": []}
}

List 3 to 6 gaps ordered by priority and 3 to 6 courses.

**CV:**
-----
%s
-----`

// PromptStore resolves the system and user prompts for analysis. Prompts come
// from a file when one is configured, then from inline configuration, then
// from the built-in defaults. Reload re-reads the files.
type PromptStore struct {
	mu     sync.RWMutex
	cfg    config.PromptConfig
	system string
	user   string
}

// NewPromptStore loads prompts according to cfg
func NewPromptStore(cfg config.PromptConfig) (*PromptStore, error) {
	ps := &PromptStore{cfg: cfg}
	if err := ps.Reload(); err != nil {
		return nil, err
	}
	return ps, nil
}

// DefaultPromptStore returns a store backed only by the built-in prompts
func DefaultPromptStore() *PromptStore {
	return &PromptStore{system: DefaultSystemPrompt, user: DefaultUserPrompt}
}

// Reload re-reads configured prompt files. On error the previous prompts stay
// in place.
func (ps *PromptStore) Reload() error {
	system, err := resolvePrompt(ps.cfg.SystemPromptFile, ps.cfg.SystemPrompt, DefaultSystemPrompt)
	if err != nil {
		return err
	}
	user, err := resolvePrompt(ps.cfg.UserPromptFile, ps.cfg.UserPrompt, DefaultUserPrompt)
	if err != nil {
		return err
	}

	ps.mu.Lock()
	ps.system = system
	ps.user = user
	ps.mu.Unlock()
	return nil
}

// Files returns the prompt files backing this store
func (ps *PromptStore) Files() []string {
	var files []string
	for _, f := range []string{ps.cfg.SystemPromptFile, ps.cfg.UserPromptFile} {
		if f != "" {
			files = append(files, f)
		}
	}
	return files
}

// Build returns the prompt pair for cvText
func (ps *PromptStore) Build(cvText string) Request {
	ps.mu.RLock()
	system, user := ps.system, ps.user
	ps.mu.RUnlock()

	return Request{
		SystemPrompt: system,
		UserPrompt:   fillTemplate(user, cvText),
	}
}

// fillTemplate substitutes the first placeholder with cvText. A template
// without one gets the CV appended. Only the first placeholder is replaced so
// that "%s" inside the CV is never expanded.
func fillTemplate(template, cvText string) string {
	if !strings.Contains(template, cvPlaceholder) {
		return template + "\n\n" + cvText
	}
	return strings.Replace(template, cvPlaceholder, cvText, 1)
}

// resolvePrompt selects a prompt: file first, then inline, then default
func resolvePrompt(file, inline, fallback string) (string, error) {
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("failed to read prompt file %s: %w", file, err)
		}
		if content := strings.TrimSpace(string(data)); content != "" {
			return content, nil
		}
	}
	if strings.TrimSpace(inline) != "" {
		return inline, nil
	}
	return fallback, nil
}
