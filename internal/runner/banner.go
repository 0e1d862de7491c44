package runner

import (
	"github.com/projectdiscovery/gologger"

	"lanscout/pkg/version"
)

var banner = `
   __                             __
  / /___ _____  ______________  __  __/ /_
 / / __ ` + "`" + `/ __ \/ ___/ ___/ __ \/ / / / __/
/ / /_/ / / / (__  ) /__/ /_/ / /_/ / /_
/_/\__,_/_/ /_/____/\___/\____/\__,_/\__/
`

// showBanner is used to show the banner to the user
func showBanner() {
	gologger.Print().Msgf("%s\n", banner)
	gologger.Print().Msgf("\t\t%s\n\n", version.Version)
}
