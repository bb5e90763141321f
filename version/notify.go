package version

import (
	"context"
	"fmt"
	"io"

	"github.com/medley-cli/medley/color"
	"github.com/medley-cli/medley/constant"
	"github.com/medley-cli/medley/key"
	"github.com/medley-cli/medley/log"
	"github.com/medley-cli/medley/style"
	"github.com/spf13/viper"
)

// Notify prints an alert to w when a newer release than the running one exists.
func Notify(ctx context.Context, w io.Writer) {
	if !viper.GetBool(key.CliVersionCheck) {
		return
	}

	latest, err := Latest(ctx)
	if err != nil {
		log.Debugf("version check: %v", err)
		return
	}

	if comp, err := Compare(latest, constant.Version); err != nil || comp <= 0 {
		return
	}

	_, _ = fmt.Fprintf(w, `
%s New version is available %s %s
%s

`,
		style.Fg(color.Green)("▇▇▇"),
		style.Bold(latest),
		style.Faint(fmt.Sprintf("(You're on %s)", constant.Version)),
		style.Faint("https://github.com/"+constant.Repository+"/releases/tag/v"+latest),
	)
}
