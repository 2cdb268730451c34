package usecase

import (
	"fmt"

	"github.com/secmon-lab/storevoice/pkg/domain/model"
	goslack "github.com/slack-go/slack"
)

func quotaAlertMessage(agent *model.Agent) ([]goslack.Block, string) {
	text := fmt.Sprintf("Agent %s (%s) reached its usage limit of %d turns", agent.ID, agent.DisplayName(), agent.UsageLimit)

	header := goslack.NewHeaderBlock(goslack.NewTextBlockObject(goslack.PlainTextType, "Usage limit reached", false, false))
	body := goslack.NewSectionBlock(nil, []*goslack.TextBlockObject{
		goslack.NewTextBlockObject(goslack.MarkdownType, fmt.Sprintf("*Agent*\n`%s`", agent.ID), false, false),
		goslack.NewTextBlockObject(goslack.MarkdownType, fmt.Sprintf("*Store*\n%s", agent.DisplayName()), false, false),
		goslack.NewTextBlockObject(goslack.MarkdownType, fmt.Sprintf("*Used*\n%d / %d", agent.UsedCount, agent.UsageLimit), false, false),
	}, nil)
	footer := goslack.NewContextBlock("", goslack.NewTextBlockObject(goslack.MarkdownType, "Renew the agent quota to resume replies.", false, false))

	return []goslack.Block{header, body, footer}, text
}
