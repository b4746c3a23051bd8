package collector

import (
	"fmt"
	"os/user"
	"strconv"
	"strings"
	"sync"
)

// UserCache resolves uids and gids to names, remembering every answer.
type UserCache struct {
	mu     sync.Mutex
	users  map[int]string
	groups map[int]string
}

// NewUserCache returns an empty cache.
func NewUserCache() *UserCache {
	return &UserCache{users: make(map[int]string), groups: make(map[int]string)}
}

// UserName returns the login name of uid, or the number when unknown.
func (c *UserCache) UserName(uid int) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n, ok := c.users[uid]; ok {
		return n
	}
	n := strconv.Itoa(uid)
	if u, err := user.LookupId(n); err == nil {
		n = u.Username
	}
	c.users[uid] = n
	return n
}

// GroupName returns the name of gid, or the number when unknown.
func (c *UserCache) GroupName(gid int) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n, ok := c.groups[gid]; ok {
		return n
	}
	n := strconv.Itoa(gid)
	if g, err := user.LookupGroupId(n); err == nil {
		n = g.Name
	}
	c.groups[gid] = n
	return n
}

// GroupNames maps a comma separated gid list to names.
func (c *UserCache) GroupNames(gids string) string {
	if gids == "" {
		return ""
	}
	parts := strings.Split(gids, ",")
	for i, p := range parts {
		if gid, err := strconv.Atoi(p); err == nil {
			parts[i] = c.GroupName(gid)
		}
	}
	return strings.Join(parts, ",")
}

// LookupUID accepts a user name or a numeric uid.
func (c *UserCache) LookupUID(name string) (int, error) {
	if uid, err := strconv.Atoi(name); err == nil {
		if uid < 0 {
			return 0, fmt.Errorf("invalid uid %d", uid)
		}
		return uid, nil
	}
	u, err := user.Lookup(name)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(u.Uid)
}
