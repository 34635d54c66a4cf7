package agents

import (
	"context"
	"fmt"

	"github.com/bububa/research-crew/components"
	"github.com/bububa/research-crew/schema"
)

// Chain agents chain
type Chain[I schema.Schema, O schema.Schema] struct {
	name   string
	agents []ChainableAgent
}

// NewChain returns a new Chain instance
func NewChain[I schema.Schema, O schema.Schema](agents ...ChainableAgent) *Chain[I, O] {
	return &Chain[I, O]{
		agents: agents,
	}
}

func (c *Chain[I, O]) Name() string {
	return c.name
}

func (c *Chain[I, O]) SetName(name string) {
	c.name = name
}

// Run runs the chat agents with the given user input synchronously.
func (c *Chain[I, O]) Run(ctx context.Context, input *I, output *O) ([]components.LLMResponse, error) {
	l := len(c.agents)
	respList := make([]components.LLMResponse, 0, l)
	var (
		in  any = input
		out any
	)
	for _, agent := range c.agents {
		resp := new(components.LLMResponse)
		ret, err := agent.RunForChain(ctx, in, resp)
		respList = append(respList, *resp)
		if err != nil {
			return respList, fmt.Errorf("%s: %w", agent.Name(), err)
		}
		in = ret
		out = ret
	}
	outO, ok := out.(*O)
	if !ok {
		return respList, fmt.Errorf("invalid output schema: %T", out)
	}
	*output = *outO
	return respList, nil
}

// RunForChain runs the chained agents as a single step of an outer chain, merging their usage into llmResp
func (c *Chain[I, O]) RunForChain(ctx context.Context, input any, llmResp *components.LLMResponse) (any, error) {
	in, ok := input.(*I)
	if !ok {
		return nil, fmt.Errorf("invalid input schema: %T", input)
	}
	out := new(O)
	respList, err := c.Run(ctx, in, out)
	if llmResp != nil {
		for idx := range respList {
			llmResp.Merge(&respList[idx])
		}
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}
