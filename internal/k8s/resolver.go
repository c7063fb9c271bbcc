package k8s

import (
	"fmt"
	"sort"
	"sync"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/tools/clientcmd"
)

// Resolver resolves kubeconfig context names to connected clusters, caching
// one client per context. It is safe for concurrent use.
type Resolver struct {
	loader   clientcmd.ClientConfig
	clusters map[string]*Cluster
	mu       sync.RWMutex
}

// NewResolver creates a Resolver over the default kubeconfig loading rules
// (KUBECONFIG, then ~/.kube/config).
func NewResolver() *Resolver {
	loadingRules := clientcmd.NewDefaultClientConfigLoadingRules()
	loader := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(
		loadingRules, &clientcmd.ConfigOverrides{})

	return &Resolver{
		loader:   loader,
		clusters: make(map[string]*Cluster),
	}
}

// Resolve returns the cluster for the given kubeconfig context, building and
// caching the client on first use.
func (r *Resolver) Resolve(contextName string) (*Cluster, error) {
	r.mu.RLock()
	cluster, exists := r.clusters[contextName]
	r.mu.RUnlock()

	if exists {
		return cluster, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Double-check in case another goroutine built it while we waited
	if cached, ok := r.clusters[contextName]; ok {
		return cached, nil
	}

	rawConfig, err := r.loader.RawConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load kubeconfig: %w", err)
	}

	if _, ok := rawConfig.Contexts[contextName]; !ok {
		return nil, fmt.Errorf("context %q not found in kubeconfig", contextName)
	}

	restConfig, err := clientcmd.NewNonInteractiveClientConfig(
		rawConfig,
		contextName,
		&clientcmd.ConfigOverrides{CurrentContext: contextName},
		clientcmd.NewDefaultClientConfigLoadingRules(),
	).ClientConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to build client config for context %q: %w", contextName, err)
	}

	client, err := kubernetes.NewForConfig(restConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create client for context %q: %w", contextName, err)
	}

	cluster = NewCluster(contextName, client)
	r.clusters[contextName] = cluster

	return cluster, nil
}

// CurrentContext returns the kubeconfig's current context name.
func (r *Resolver) CurrentContext() (string, error) {
	rawConfig, err := r.loader.RawConfig()
	if err != nil {
		return "", fmt.Errorf("failed to load kubeconfig: %w", err)
	}
	return rawConfig.CurrentContext, nil
}

// Contexts returns the available kubeconfig context names, sorted.
func (r *Resolver) Contexts() ([]string, error) {
	rawConfig, err := r.loader.RawConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load kubeconfig: %w", err)
	}

	contexts := make([]string, 0, len(rawConfig.Contexts))
	for name := range rawConfig.Contexts {
		contexts = append(contexts, name)
	}
	sort.Strings(contexts)

	return contexts, nil
}

// DefaultNamespace returns the namespace configured for the given context,
// or "default" when the context does not name one.
func (r *Resolver) DefaultNamespace(contextName string) (string, error) {
	rawConfig, err := r.loader.RawConfig()
	if err != nil {
		return "", fmt.Errorf("failed to load kubeconfig: %w", err)
	}

	kubeContext, ok := rawConfig.Contexts[contextName]
	if !ok {
		return "", fmt.Errorf("context %q not found", contextName)
	}

	if kubeContext.Namespace == "" {
		return corev1.NamespaceDefault, nil
	}
	return kubeContext.Namespace, nil
}
