package biz

import (
	"time"

	"github.com/DevRickLin/channel-summariser/internal/biz/repo"
	"github.com/DevRickLin/channel-summariser/internal/biz/usecase"
)

// Usecases contains all usecases
type Usecases struct {
	Summarise *usecase.SummariseUsecase
	Share     *usecase.ShareUsecase
}

// NewUsecases wires the usecase layer on top of the repositories
func NewUsecases(channel repo.ChannelRepo, summarizer repo.SummarizerRepo, prompts usecase.PromptConfig, shareTimeout time.Duration) *Usecases {
	return &Usecases{
		Summarise: usecase.NewSummariseUsecase(channel, summarizer, prompts),
		Share:     usecase.NewShareUsecase(shareTimeout),
	}
}

// Stop releases usecase resources
func (u *Usecases) Stop() {
	u.Share.Stop()
}
