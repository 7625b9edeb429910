package registryauth

import (
	"context"
	"fmt"

	"github.com/pkgdepot/registry-auth/internal/audit"
	"github.com/pkgdepot/registry-auth/internal/common"
)

// Identity is the caller the host authenticated for this request. Groups
// already include the base group assigned at authentication time.
type Identity struct {
	Name   string
	Groups []string
}

// PackagePolicy declares, per package, which groups may read and which may
// publish. The publish list doubles as the unpublish list; there is no
// separate one.
type PackagePolicy struct {
	Name    string
	Access  []string
	Publish []string
}

// AllowAccess decides whether id may read the package. Synchronous, no
// store access.
func (p *Plugin) AllowAccess(ctx context.Context, id Identity, policy PackagePolicy) (bool, error) {
	return p.allow(ctx, audit.ActionAccess, id, policy.Name, policy.Access)
}

// AllowPublish decides whether id may publish the package.
func (p *Plugin) AllowPublish(ctx context.Context, id Identity, policy PackagePolicy) (bool, error) {
	return p.allow(ctx, audit.ActionPublish, id, policy.Name, policy.Publish)
}

// AllowUnpublish decides whether id may remove the package, consulting the
// same list as AllowPublish.
func (p *Plugin) AllowUnpublish(ctx context.Context, id Identity, policy PackagePolicy) (bool, error) {
	return p.allow(ctx, audit.ActionUnpublish, id, policy.Name, policy.Publish)
}

// allow grants iff the identity's groups intersect the policy's list.
func (p *Plugin) allow(ctx context.Context, action audit.Action, id Identity, pkg string, allowed []string) (bool, error) {
	if intersects(id.Groups, allowed) {
		p.log.Info(ctx, "authorization granted",
			"action", string(action), "username", id.Name, "package", pkg)
		p.events.Record(ctx, audit.Event{Action: action, Username: id.Name, Package: pkg, Allowed: true})
		return true, nil
	}

	p.log.Warn(ctx, "authorization denied",
		"action", string(action), "username", id.Name, "package", pkg)
	p.events.Record(ctx, audit.Event{Action: action, Username: id.Name, Package: pkg, Allowed: false})
	return false, fmt.Errorf("%w: user %s is not allowed to %s package %s",
		common.ErrorForbidden, id.Name, action, pkg)
}

func intersects(groups, allowed []string) bool {
	if len(groups) == 0 || len(allowed) == 0 {
		return false
	}
	set := make(map[string]struct{}, len(allowed))
	for _, g := range allowed {
		set[g] = struct{}{}
	}
	for _, g := range groups {
		if _, ok := set[g]; ok {
			return true
		}
	}
	return false
}
