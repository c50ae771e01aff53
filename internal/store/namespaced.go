package store

import "context"

// Namespaced prefixes every key with "<namespace>_", so the session's
// credentials land under app_access_token, app_refresh_token and app_user.
type Namespaced struct {
	inner  Store
	prefix string
}

func NewNamespaced(inner Store, namespace string) *Namespaced {
	return &Namespaced{inner: inner, prefix: namespace + "_"}
}

func (n *Namespaced) Key(key string) string {
	return n.prefix + key
}

func (n *Namespaced) Get(ctx context.Context, key string) (string, error) {
	return n.inner.Get(ctx, n.Key(key))
}

func (n *Namespaced) Set(ctx context.Context, key, value string) error {
	return n.inner.Set(ctx, n.Key(key), value)
}

func (n *Namespaced) Delete(ctx context.Context, key string) error {
	return n.inner.Delete(ctx, n.Key(key))
}

// Clear only touches keys inside the namespace.
func (n *Namespaced) Clear(ctx context.Context, prefix string) error {
	return n.inner.Clear(ctx, n.Key(prefix))
}

func (n *Namespaced) Close() error {
	return n.inner.Close()
}
