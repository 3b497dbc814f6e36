package toolbox

import (
	"context"
	"fmt"
	"strings"
)

// PlanToolBox adapts ToolBox to the narrow planservice.ToolBox interface,
// so planservice never has to import tooldispatch's wire types.
type PlanToolBox struct {
	tb *ToolBox
}

// AsPlanToolBox wraps tb for use as a planservice.ToolBox.
func AsPlanToolBox(tb *ToolBox) *PlanToolBox {
	return &PlanToolBox{tb: tb}
}

func (p *PlanToolBox) OpenFile(ctx context.Context, fsFilePath string) (string, error) {
	out, err := p.tb.OpenFile(ctx, fsFilePath)
	if err != nil {
		return "", err
	}
	return out.Contents, nil
}

func (p *PlanToolBox) RecentlyEditedFiles(ctx context.Context, files []string) ([]string, error) {
	return p.tb.RecentlyEditedFiles(ctx, files)
}

func (p *PlanToolBox) DiagnosticsFor(ctx context.Context, files []string) (string, error) {
	grouped, err := p.tb.DiagnosticsFor(ctx, files)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, path := range files {
		diags, ok := grouped[path]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "%s:\n", path)
		for _, d := range diags {
			fmt.Fprintf(&b, "  %s\n", d.Message)
		}
	}
	return b.String(), nil
}
