package detect

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

type chainPattern struct {
	name    string
	pattern string
}

// Address shapes are purely syntactic: character class and length checks
// per chain format, no checksum validation. The Solana base58 pattern is
// broad enough to also match unrelated 32-44 character base58 tokens;
// that over-match is accepted as the cost of coverage breadth.
var chainPatterns = []chainPattern{
	{"Ethereum (EVM chains)", `0x[a-fA-F0-9]{40}`},
	{"Bitcoin (BTC)", `[13][a-km-zA-HJ-NP-Z1-9]{25,34}|bc1[a-zA-HJ-NP-Z0-9]{38,58}`},
	{"Litecoin (LTC)", `[LM][a-km-zA-HJ-NP-Z1-9]{26,33}|ltc1[a-zA-HJ-NP-Z0-9]{39,59}`},
	{"Dogecoin (DOGE)", `D[a-km-zA-HJ-NP-Z1-9]{33}`},
	{"Bitcoin Cash (BCH)", `(bitcoincash:)?q[a-z0-9]{41}`},
	{"Dash (DASH)", `X[1-9A-HJ-NP-Za-km-z]{33}`},
	{"Zcash (ZEC)", `t1[a-km-zA-HJ-NP-Z1-9]{33}|z[a-km-zA-HJ-NP-Z1-9]{93}`},
	{"Solana (SOL)", `[1-9A-HJ-NP-Za-km-z]{32,44}`},
	{"TRON (TRX)", `T[a-zA-HJ-NP-Z1-9]{33}`},
	{"Polkadot (DOT)", `1[a-zA-HJ-NP-Z1-9]{46,47}`},
	{"Ripple (XRP)", `r[a-km-zA-HJ-NP-Z1-9]{25,34}`},
	{"Cardano (ADA)", `addr1[a-z0-9]{98}|[DE][1-9A-HJ-NP-Za-km-z]{32,103}`},
	{"Monero (XMR)", `4[0-9AB][1-9A-HJ-NP-Za-km-z]{93}`},
	{"BNB Beacon Chain", `bnb1[a-z0-9]{38}`},
	{"Avalanche (AVAX X-Chain)", `X-[a-km-zA-HJ-NP-Z1-9]{44}`},
	{"Cosmos (ATOM)", `cosmos1[a-z0-9]{38}`},
	{"Tezos (XTZ)", `tz[1-3][a-km-zA-HJ-NP-Z1-9]{33}`},
	{"NEAR Protocol", `[a-z0-9\._-]{2,64}\.near`},
	{"Stellar (XLM)", `G[A-Z0-9]{55}`},
	{"Algorand (ALGO)", `[A-Z2-7]{58}`},
	{"The Open Network (TON)", `(?:-1|0):[a-fA-F0-9]{64}|[UEk][a-zA-Z0-9\-_]{47}`},
}

// Registry holds the compiled address detector. Immutable after
// construction; adding a chain is a change to chainPatterns, not a
// runtime operation.
type Registry struct {
	expr  *regexp.Regexp
	names []string
}

func NewRegistry() (*Registry, error) {
	patterns := make([]string, 0, len(chainPatterns))
	names := make([]string, 0, len(chainPatterns))
	for _, chain := range chainPatterns {
		patterns = append(patterns, chain.pattern)
		names = append(names, chain.name)
	}

	expr, err := regexp.Compile(`(?i)\b(` + strings.Join(patterns, "|") + `)\b`)
	if err != nil {
		return nil, fmt.Errorf("compile address patterns: %w", err)
	}

	sort.Strings(names)
	return &Registry{expr: expr, names: names}, nil
}

func (r *Registry) Match(text string) bool {
	if r == nil || strings.TrimSpace(text) == "" {
		return false
	}
	return r.expr.MatchString(text)
}

// ChainNames returns the covered chains sorted by display name.
func (r *Registry) ChainNames() []string {
	if r == nil {
		return []string{}
	}
	return append([]string{}, r.names...)
}
