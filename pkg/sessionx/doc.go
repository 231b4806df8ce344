/*
Package sessionx binds an iamsdk.Client to observable, persisted session
state.

A Manager restores a persisted session on Init, keeps a State snapshot
(token, user, permissions, roles) in sync across login/logout/refresh, and
notifies subscribers on every transition:

	store, _ := sessionx.NewFileStore(filepath.Join(home, ".myapp"))
	mgr := sessionx.NewManager(client, store)

	if err := mgr.Init(ctx); err != nil {
		return err
	}
	if !mgr.State().Authenticated {
		_, err := mgr.Login(ctx, email, password)
		...
	}

	ch, cancel := mgr.Subscribe()
	defer cancel()
	go func() {
		for st := range ch {
			render(st) // latest snapshot only; slow readers skip intermediates
		}
	}()

Tokens persist through a TokenStore; MemoryStore, FileStore and SQLiteStore
are provided. Any verification failure, at Init or RefreshUser, terminates
the session: state and the persisted token are cleared rather than retried.

AutoRefresh optionally renews JWT access tokens shortly before their exp
claim, without ever verifying signatures locally.
*/
package sessionx
