// Package fetch provides rate-limited HTTP fetching with failure
// classification and bounded retries. Every request flows through a shared
// limiter, so callers cannot accidentally hammer the target site, and every
// failure is classified as transient, permanent, or blocked so callers can
// decide between retrying, skipping, and aborting.
package fetch
