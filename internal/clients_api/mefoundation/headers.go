package mefoundation

import "strings"

// Header sets copied from the web and iOS clients of the service.
// The server fingerprints them, so order and spelling matter.

// HeaderField is one request header. Headers are kept as an ordered list.
type HeaderField struct {
	Key   string
	Value string
}

// Headers is an ordered header list.
type Headers []HeaderField

// With returns a copy with key set to value, replacing an existing entry in place.
func (h Headers) With(key, value string) Headers {
	out := make(Headers, 0, len(h)+1)
	replaced := false
	for _, f := range h {
		if strings.EqualFold(f.Key, key) {
			if !replaced {
				out = append(out, HeaderField{Key: key, Value: value})
				replaced = true
			}
			continue
		}
		out = append(out, f)
	}
	if !replaced {
		out = append(out, HeaderField{Key: key, Value: value})
	}
	return out
}

// Get returns the first value for key, case-insensitively.
func (h Headers) Get(key string) string {
	for _, f := range h {
		if strings.EqualFold(f.Key, key) {
			return f.Value
		}
	}
	return ""
}

var walletsPageHeaders = Headers{
	{"User-Agent", "Mozilla/5.0 (X11; Linux x86_64; rv:133.0) Gecko/20100101 Firefox/133.0"},
	{"Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"},
	{"Accept-Language", "en-US,en;q=0.5"},
	{"Upgrade-Insecure-Requests", "1"},
	{"Sec-Fetch-Dest", "document"},
	{"Sec-Fetch-Mode", "navigate"},
	{"Sec-Fetch-Site", "cross-site"},
	{"Priority", "u=0, i"},
}

var verifySessionHeaders = Headers{
	{"Host", "api-mainnet.magiceden.io"},
	{"x-exodus-app-id", "magic-eden"},
	{"Accept", "*/*"},
	{"x-requested-with", "magic-eden 2.30.0 mobile"},
	{"x-exodus-platform", "ios"},
	{"Accept-Language", "ru"},
	{"User-Agent", "Magic%20Eden/194 CFNetwork/1496.0.7 Darwin/23.5.0"},
	{"Connection", "keep-alive"},
	{"x-exodus-version", "2.30.0"},
	{"Content-Type", "application/json"},
}

var sessionHeaders = Headers{
	{"User-Agent", "Mozilla/5.0 (X11; Linux x86_64; rv:127.0) Gecko/20100101 Firefox/127.0"},
	{"Accept", "*/*"},
	{"Accept-Language", "ru-RU,ru;q=0.8,en-US;q=0.5,en;q=0.3"},
	{"Referer", "https://mefoundation.com/login"},
	{"content-type", "application/json"},
	{"x-trpc-source", "nextjs-react"},
	{"sentry-trace", "4c8344fb2c0942bca3995cd102a4223c-ab959a225a809cc8-1"},
	{"baggage", "sentry-environment=production,sentry-release=OXJ8HjdYzWapTs_F5Efi8,sentry-public_key=1a5e7baa354df159cf3efd1eeca5baea,sentry-trace_id=4c8344fb2c0942bca3995cd102a4223c,sentry-sample_rate=1,sentry-sampled=true"},
	{"Connection", "keep-alive"},
	{"Sec-Fetch-Dest", "empty"},
	{"Sec-Fetch-Mode", "cors"},
	{"Sec-Fetch-Site", "same-origin"},
	{"Priority", "u=4"},
	{"TE", "trailers"},
}

var linkWalletHeaders = Headers{
	{"accept", "*/*"},
	{"accept-language", "ru-RU,ru;q=0.9,en-US;q=0.8,en;q=0.7"},
	{"baggage", "sentry-environment=production,sentry-release=jY6mki4_Tqyy2LJT5ljgm,sentry-public_key=9db2fb508ab642eedd5d51bf3618740b,sentry-trace_id=fdac1520ca6c46a7afcc8f20fb119f2d,sentry-replay_id=c753b4fe121042339939e5a16010d415,sentry-sample_rate=0.05,sentry-sampled=true"},
	{"content-type", "application/json"},
	{"sec-ch-ua", `"Not_A Brand";v="8", "Chromium";v="120", "Google Chrome";v="120"`},
	{"sec-ch-ua-mobile", "?0"},
	{"sec-ch-ua-platform", `"Linux"`},
	{"sec-fetch-dest", "empty"},
	{"sec-fetch-mode", "cors"},
	{"sec-fetch-site", "same-origin"},
	{"sentry-trace", "fdac1520ca6c46a7afcc8f20fb119f2d-85f42afaefb3a189-1"},
	{"x-trpc-source", "nextjs-react"},
	{"Referer", "https://mefoundation.com/wallets?eligible=false"},
	{"Referrer-Policy", "strict-origin-when-cross-origin"},
}
