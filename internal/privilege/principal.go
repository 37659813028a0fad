package privilege

import (
	"fmt"
	"os/user"
	"strconv"

	serrors "github.com/slinkshare/slink/internal/errors"

	"golang.org/x/sys/unix"
)

// Principal is a numeric OS identity with the names it was resolved from.
type Principal struct {
	UID   int
	GID   int
	User  string
	Group string
}

func (p Principal) String() string {
	name := p.User
	if name == "" {
		name = strconv.Itoa(p.UID)
	}
	group := p.Group
	if group == "" {
		group = strconv.Itoa(p.GID)
	}
	return name + ":" + group
}

// ResolvePrincipal looks up a user and a group by name.
func ResolvePrincipal(userName, groupName string) (Principal, error) {
	u, err := user.Lookup(userName)
	if err != nil {
		return Principal{}, fmt.Errorf("user %q: %w", userName, serrors.ErrIdentityResolution)
	}
	g, err := user.LookupGroup(groupName)
	if err != nil {
		return Principal{}, fmt.Errorf("group %q: %w", groupName, serrors.ErrIdentityResolution)
	}

	uid, err := strconv.Atoi(u.Uid)
	if err != nil {
		return Principal{}, fmt.Errorf("user %q has non-numeric uid %q: %w", userName, u.Uid, serrors.ErrIdentityResolution)
	}
	gid, err := strconv.Atoi(g.Gid)
	if err != nil {
		return Principal{}, fmt.Errorf("group %q has non-numeric gid %q: %w", groupName, g.Gid, serrors.ErrIdentityResolution)
	}

	return Principal{UID: uid, GID: gid, User: u.Username, Group: g.Name}, nil
}

// Current returns the operating principal: the real uid and gid of this
// process. Names are filled in when the host can resolve them.
func Current() Principal {
	p := Principal{UID: unix.Getuid(), GID: unix.Getgid()}
	if u, err := user.LookupId(strconv.Itoa(p.UID)); err == nil {
		p.User = u.Username
	}
	if g, err := user.LookupGroupId(strconv.Itoa(p.GID)); err == nil {
		p.Group = g.Name
	}
	return p
}
