package crew

import (
	"errors"

	"github.com/bububa/research-crew/components"
	"github.com/bububa/research-crew/tools"
	"github.com/bububa/research-crew/tools/webscraper"
)

// Keys declared in the embedded agents.yaml and tasks.yaml
const (
	ResearchAgent      = "research_agent"
	SummarizationAgent = "summarization_agent"
	FactCheckerAgent   = "fact_checker_agent"

	ResearchTask      = "research_task"
	SummarizationTask = "summarization_task"
	FactCheckingTask  = "fact_checking_task"
)

// ErrMissingSearch is returned when the research crew has no search tool
var ErrMissingSearch = errors.New("research crew needs a search tool")

// NewResearchCrew returns the research, summarize and fact check crew.
// clt is shared by every agent. search is used by the researcher and the fact checker.
// Pass WithSpecs to replace the embedded definitions; they must declare the same keys.
func NewResearchCrew(clt components.LLMClient, search tools.AnonymousTool, opts ...Option) (*Crew, error) {
	if search == nil {
		return nil, ErrMissingSearch
	}
	scraper := webscraper.New()
	base := []Option{
		WithLLM(clt),
		WithAgentTools(ResearchAgent, search, scraper),
		WithAgentTools(FactCheckerAgent, search),
		WithTaskTools(ResearchTask, search, scraper),
		WithTaskTools(FactCheckingTask, search),
	}
	return New(nil, append(base, opts...)...)
}
