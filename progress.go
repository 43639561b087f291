package osm2initial

import (
	"fmt"
	"sync"

	"github.com/k0kubun/go-ansi"
	"github.com/schollz/progressbar/v3"
)

// Progress receives fire-and-forget notifications about long running stages.
// Next could be called from several goroutines.
type Progress interface {
	Start(description string, total int)
	Next()
	Finish()
}

// NopProgress ignores everything
type NopProgress struct{}

func (NopProgress) Start(string, int) {}
func (NopProgress) Next()             {}
func (NopProgress) Finish()           {}

// BarProgress draws progress bar in terminal
type BarProgress struct {
	sync.Mutex
	bar   *progressbar.ProgressBar
	stage int
}

// NewBarProgress returns progress bar writing to stdout
func NewBarProgress() *BarProgress {
	return &BarProgress{}
}

func (p *BarProgress) Start(description string, total int) {
	p.Lock()
	defer p.Unlock()
	p.stage++
	p.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(ansi.NewAnsiStdout()),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(15),
		progressbar.OptionShowCount(),
		progressbar.OptionSetDescription(fmt.Sprintf("[cyan][%d]%s...", p.stage, description)),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}

func (p *BarProgress) Next() {
	p.Lock()
	defer p.Unlock()
	if p.bar != nil {
		p.bar.Add(1)
	}
}

func (p *BarProgress) Finish() {
	p.Lock()
	defer p.Unlock()
	if p.bar != nil {
		p.bar.Finish()
		fmt.Println()
		p.bar = nil
	}
}
