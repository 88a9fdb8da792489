// Package banner prints the gateway's startup summary: the Cx identity it
// will stamp on outbound requests, the mode it is running in, and the cache
// policy derived from the re-registration interval.
package banner

import (
	"fmt"
	"io"
	"os"
	"time"
)

const logo = `
======================================================================
  ____        ____       _
 / ___|_  __ / ___| __ _| |_ _____      ____ _ _   _
| |   \ \/ /| |  _ / _` + "`" + ` | __/ _ \ \ /\ / / _` + "`" + ` | | | |
| |___ >  < | |_| | (_| | ||  __/\ V  V / (_| | |_| |
 \____/_/\_\ \____|\__,_|\__\___| \_/\_/ \__,_|\__, |
                                               |___/
----------------------------------------------------------------------`

const footer = `======================================================================`

// Info is the startup summary, filled in from configuration once the
// gateway's collaborators are wired.
type Info struct {
	Service                string
	ListenAddr             string
	HSSConfigured          bool
	OriginHost             string
	OriginRealm            string
	DestinationRealm       string
	ServerName             string
	ReregistrationInterval time.Duration
	SproutAddr             string
}

// Mode names the gateway's operating mode for the summary.
func (i Info) Mode() string {
	if i.HSSConfigured {
		return "HSS-backed (UAR/LIR/MAR/SAR upstream, realm " + i.DestinationRealm + ")"
	}
	return "cache-only (no HSS configured)"
}

// CachePolicy describes the subscription-record TTL the handlers will use.
func (i Info) CachePolicy() string {
	if !i.HSSConfigured {
		return "no expiry (store-managed)"
	}
	return fmt.Sprintf("%s (2x reregistration interval %s)",
		2*i.ReregistrationInterval, i.ReregistrationInterval)
}

// Fprint renders the banner to w.
func Fprint(w io.Writer, info Info) {
	fmt.Fprintln(w, logo)
	fmt.Fprintf(w, "%s — HSS cache / Cx protocol gateway\n\n", info.Service)
	fmt.Fprintf(w, " http      : %s\n", info.ListenAddr)
	fmt.Fprintf(w, " cx origin : %s (realm %s)\n", info.OriginHost, info.OriginRealm)
	fmt.Fprintf(w, " scscf     : %s\n", info.ServerName)
	fmt.Fprintf(w, " mode      : %s\n", info.Mode())
	fmt.Fprintf(w, " cache ttl : %s\n", info.CachePolicy())
	fmt.Fprintf(w, " sprout    : %s\n", info.SproutAddr)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Ready.")
	fmt.Fprintln(w, footer)
	fmt.Fprintln(w)
}

// Print renders the banner to stdout.
func Print(info Info) {
	Fprint(os.Stdout, info)
}
