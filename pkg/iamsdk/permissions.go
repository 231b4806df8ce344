package iamsdk

// reconcilePermissions merges a response's flat permission list with the
// permissions nested inside the user's roles. The flat list seeds the result
// in order; role permissions follow role order, then permission order within
// each role. Duplicates keep their first occurrence. Inputs are never
// mutated; the result is always a fresh slice.
func reconcilePermissions(flat []Permission, user *User) []string {
	var out []string
	seen := make(map[string]struct{})

	add := func(name string) {
		if name == "" {
			return
		}
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}

	for _, p := range flat {
		add(p.Name)
	}
	if user != nil {
		for _, role := range user.Roles {
			for _, p := range role.Permissions {
				add(p.Name)
			}
		}
	}

	return out
}

// roleNames collects the user's role names, de-duplicated, in order.
func roleNames(user *User) []string {
	if user == nil || len(user.Roles) == 0 {
		return nil
	}

	var out []string
	seen := make(map[string]struct{})
	for _, role := range user.Roles {
		if role.Name == "" {
			continue
		}
		if _, ok := seen[role.Name]; ok {
			continue
		}
		seen[role.Name] = struct{}{}
		out = append(out, role.Name)
	}
	return out
}

// newIdentity builds an Identity from a verification payload, reconciling
// permissions and extracting role names.
func newIdentity(user *User, flat []Permission) *Identity {
	return &Identity{
		User:        user,
		Permissions: reconcilePermissions(flat, user),
		Roles:       roleNames(user),
	}
}
