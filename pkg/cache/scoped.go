package cache

// ScopedKeyer prefixes every key of an inner [Keyer], separating callers
// that share one backend (for example one Redis instance serving several
// deployments).
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer returns a keyer that prepends prefix. A nil inner keyer
// means [DefaultKeyer].
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) ExtractKey(docHash, language string) string {
	return k.prefix + k.inner.ExtractKey(docHash, language)
}

func (k *ScopedKeyer) PlanKey(textHash string, opts PlanKeyOpts) string {
	return k.prefix + k.inner.PlanKey(textHash, opts)
}

func (k *ScopedKeyer) StyleKey(prompt string, provider, model string) string {
	return k.prefix + k.inner.StyleKey(prompt, provider, model)
}

func (k *ScopedKeyer) ArtifactKey(planHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(planHash, opts)
}
