// Package strategy holds the concrete resolution strategies: the yt-dlp
// dump, third-party JSON lookups and HTML scrapers.
package strategy

import (
	"fmt"
	"net/http"

	"socialdl/internal/extractor"
	"socialdl/internal/model"
	"socialdl/internal/resolver"
)

type factory func(platform model.Platform) resolver.Strategy

// Build assembles the configured chain for every supported platform.
// Unknown strategy names are a configuration error.
func Build(cfg *model.Config, ytdlp *extractor.Client, client *http.Client) (resolver.Chains, error) {
	lookup := cfg.Lookup
	timeout := cfg.Resolver.LookupTimeout

	factories := map[string]factory{
		"ytdlp": func(p model.Platform) resolver.Strategy {
			return NewYtDlp(ytdlp, p, cfg.Extractor.PreferCombined)
		},
		"tikmate": func(model.Platform) resolver.Strategy {
			return NewTikmate(lookup.TikmateURL, client, timeout)
		},
		"ssstik": func(model.Platform) resolver.Strategy {
			return NewSsstik(lookup.SsstikURL, client, timeout)
		},
		"savefrom": func(model.Platform) resolver.Strategy {
			return NewSavefrom(lookup.SavefromURL, client, timeout)
		},
		"yt5s": func(model.Platform) resolver.Strategy {
			return NewYt5s(lookup.Yt5sURL, lookup.YouTubeOEmbedURL, client, timeout)
		},
		"twitsave": func(model.Platform) resolver.Strategy {
			return NewTwitsave(lookup.TwitsaveURL, client, timeout)
		},
		"twdown": func(model.Platform) resolver.Strategy {
			return NewTwdown(lookup.TwdownURL, client, timeout)
		},
		"fdown": func(model.Platform) resolver.Strategy {
			return NewFdown(lookup.FdownURL, client, timeout)
		},
		"opengraph": func(model.Platform) resolver.Strategy {
			return NewOpenGraph(client, timeout)
		},
		"snapdownloader": func(model.Platform) resolver.Strategy {
			return NewSnapdownloader(lookup.SnapdownloaderURL, client, timeout)
		},
	}

	chains := make(resolver.Chains, len(cfg.Resolver.Chains))
	for _, platform := range model.SupportedPlatforms() {
		names := cfg.Resolver.Chains[platform]
		if len(names) == 0 {
			continue
		}
		chain := make([]resolver.Strategy, 0, len(names))
		for _, name := range names {
			build, ok := factories[name]
			if !ok {
				return nil, fmt.Errorf("unknown strategy %q in %s chain", name, platform)
			}
			chain = append(chain, build(platform))
		}
		chains[platform] = chain
	}
	return chains, nil
}
