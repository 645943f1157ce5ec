// Package migrate wires per-environment client stacks and orchestrates
// production-to-sandbox listing migration runs.
package migrate

import (
	"github.com/rgoodwin/ebay-listing-migrator/internal/config"
	"github.com/rgoodwin/ebay-listing-migrator/internal/ebay"
)

// Stack is the full client graph for one eBay environment. Stacks share
// nothing: tokens, rate limit state, and policy caches are all scoped to a
// single environment.
type Stack struct {
	Env      ebay.Environment
	Auth     *ebay.UserTokenProvider
	Client   *ebay.Client
	Offers   *ebay.OfferService
	Policies *ebay.PolicyResolver
}

// StackOptions carries the cross-cutting settings applied to every stack.
type StackOptions struct {
	TokenDir    string
	Marketplace string
	RateLimit   config.RateLimitConfig
	Prompt      ebay.CodePrompter
}

// BuildStack assembles the client graph for one environment from its
// credentials.
func BuildStack(env ebay.Environment, creds config.EnvCredentials, opts StackOptions) *Stack {
	var authOpts []ebay.AuthOption
	if creds.RefreshToken != "" {
		authOpts = append(authOpts, ebay.WithRefreshToken(creds.RefreshToken))
	}

	auth := ebay.NewUserTokenProvider(
		env,
		creds.ClientID,
		creds.ClientSecret,
		creds.RedirectURI,
		creds.ScopeList(),
		ebay.NewFileTokenStore(opts.TokenDir, env),
		opts.Prompt,
		authOpts...,
	)

	limiter := ebay.NewRateLimiter(
		opts.RateLimit.PerSecond,
		opts.RateLimit.Burst,
		opts.RateLimit.DailyLimit,
	)

	client := ebay.NewClient(
		env,
		auth,
		ebay.WithMarketplace(opts.Marketplace),
		ebay.WithRateLimiter(limiter),
	)

	return &Stack{
		Env:      env,
		Auth:     auth,
		Client:   client,
		Offers:   ebay.NewOfferService(client, ebay.WithOfferMarketplace(opts.Marketplace)),
		Policies: ebay.NewPolicyResolver(client, ebay.WithPolicyMarketplace(opts.Marketplace)),
	}
}
