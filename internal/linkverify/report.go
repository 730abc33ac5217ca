package linkverify

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/bryce-seefieldt/portfolio-docs/internal/config"
	"github.com/bryce-seefieldt/portfolio-docs/internal/diagnostics"
	"github.com/bryce-seefieldt/portfolio-docs/internal/foundation/errors"
)

// Apply reports the findings under the link and anchor policies. Findings
// under PolicyThrow are logged one by one and then returned as a single links
// error. Missing assets are always warnings.
func (r *Report) Apply(diag *diagnostics.Collector, links, anchors config.Policy) error {
	if diag == nil {
		diag = diagnostics.NewCollector(nil)
	}
	var failures []string

	apply := func(findings []Finding, policy config.Policy, rule, message string) error {
		for _, f := range findings {
			if policy.Fails() {
				slog.Error(message, logAttrs(f)...)
				failures = append(failures, f.String())
				continue
			}
			err := diag.Report(policy, diagnostics.Finding{
				Category: errors.CategoryLinks,
				Rule:     rule,
				Source:   f.Page,
				Target:   f.Link,
				Message:  message,
			})
			if err != nil {
				return err
			}
		}
		return nil
	}

	if err := apply(r.BrokenLinks, links, "broken-link", "Broken link"); err != nil {
		return err
	}
	if err := apply(r.BrokenAnchors, anchors, "broken-anchor", "Broken anchor"); err != nil {
		return err
	}
	if err := apply(r.BrokenAssets, config.PolicyWarn, "missing-asset", "Missing asset"); err != nil {
		return err
	}

	if len(failures) == 0 {
		return nil
	}
	return errors.LinkError(fmt.Sprintf("found %d broken link(s)", len(failures))).
		WithContext("broken", strings.Join(failures, "; ")).
		WithContext("pages_checked", r.Pages).Build()
}
