package game

import (
	"github.com/atotto/clipboard"
)

// reportTicks is how much history the clipboard report covers.
const reportTicks = 250

// copyReport puts the session debug report on the system clipboard. On
// systems without a clipboard the report goes to the log instead.
func (g *Game) copyReport() {
	report := g.session.DebugReport(reportTicks)
	if err := clipboard.WriteAll(report); err != nil {
		g.log.Warn().Err(err).Msg("clipboard unavailable, logging report")
		g.log.Info().Msg(report)
		g.setStatus("no clipboard; report logged")
		return
	}
	g.log.Info().Int("bytes", len(report)).Msg("debug report copied")
	g.setStatus("debug report copied")
}
