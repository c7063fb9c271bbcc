package k8s

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKubeconfig = `apiVersion: v1
kind: Config
current-context: minikube
clusters:
- name: local
  cluster:
    server: https://127.0.0.1:6443
    insecure-skip-tls-verify: true
contexts:
- name: minikube
  context:
    cluster: local
    user: dev
- name: staging
  context:
    cluster: local
    user: dev
    namespace: staging-ns
users:
- name: dev
  user: {}
`

func newTestResolver(t *testing.T) *Resolver {
	t.Helper()

	path := filepath.Join(t.TempDir(), "kubeconfig")
	require.NoError(t, os.WriteFile(path, []byte(testKubeconfig), 0o600))
	t.Setenv("KUBECONFIG", path)
	return NewResolver()
}

func TestResolver_Contexts(t *testing.T) {
	r := newTestResolver(t)

	names, err := r.Contexts()

	require.NoError(t, err)
	assert.Equal(t, []string{"minikube", "staging"}, names)
}

func TestResolver_CurrentContext(t *testing.T) {
	r := newTestResolver(t)

	name, err := r.CurrentContext()

	require.NoError(t, err)
	assert.Equal(t, "minikube", name)
}

func TestResolver_DefaultNamespace(t *testing.T) {
	r := newTestResolver(t)

	ns, err := r.DefaultNamespace("staging")
	require.NoError(t, err)
	assert.Equal(t, "staging-ns", ns)

	// A context with no namespace entry falls back to "default".
	ns, err = r.DefaultNamespace("minikube")
	require.NoError(t, err)
	assert.Equal(t, "default", ns)

	_, err = r.DefaultNamespace("nope")
	require.Error(t, err)
}

func TestResolver_Resolve(t *testing.T) {
	r := newTestResolver(t)

	cluster, err := r.Resolve("staging")
	require.NoError(t, err)
	assert.Equal(t, "staging", cluster.Name)

	again, err := r.Resolve("staging")
	require.NoError(t, err)
	assert.Same(t, cluster, again)
}

func TestResolver_ResolveUnknownContext(t *testing.T) {
	r := newTestResolver(t)

	_, err := r.Resolve("nope")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found in kubeconfig")
}
