// Package k8s provides cluster resolution from kubeconfig contexts and typed
// listing for the resource kinds the shell works with.
//
// Key components:
//   - Resolver: thread-safe resolution of kubeconfig contexts to clusters,
//     with cached clients per context
//   - Cluster: a named, connected cluster with listers for the nine
//     selectable resource kinds
//   - ResourceList: the tagged union the session's selection model consumes
package k8s

import (
	"context"
	"fmt"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
)

// Cluster is an authenticated connection to one named cluster. It is
// replaced wholesale on context switch and owned by the session.
type Cluster struct {
	Name   string
	client kubernetes.Interface
}

// NewCluster wraps an existing clientset. The Resolver builds these from
// kubeconfig; tests pass a fake clientset.
func NewCluster(name string, client kubernetes.Interface) *Cluster {
	return &Cluster{Name: name, client: client}
}

// Client exposes the underlying clientset for operations the listers do not
// cover (log streaming, exec).
func (c *Cluster) Client() kubernetes.Interface {
	return c.client
}

// ListPods lists pods in the given namespace ("" for all namespaces).
func (c *Cluster) ListPods(ctx context.Context, namespace string) (ResourceList, error) {
	list, err := c.client.CoreV1().Pods(namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return ResourceList{}, fmt.Errorf("listing pods in %q: %w", namespace, err)
	}
	return NewPodList(list.Items), nil
}

// ListNodes lists cluster nodes.
func (c *Cluster) ListNodes(ctx context.Context) (ResourceList, error) {
	list, err := c.client.CoreV1().Nodes().List(ctx, metav1.ListOptions{})
	if err != nil {
		return ResourceList{}, fmt.Errorf("listing nodes: %w", err)
	}
	return NewNodeList(list.Items), nil
}

// ListDeployments lists deployments in the given namespace.
func (c *Cluster) ListDeployments(ctx context.Context, namespace string) (ResourceList, error) {
	list, err := c.client.AppsV1().Deployments(namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return ResourceList{}, fmt.Errorf("listing deployments in %q: %w", namespace, err)
	}
	return NewDeploymentList(list.Items), nil
}

// ListServices lists services in the given namespace.
func (c *Cluster) ListServices(ctx context.Context, namespace string) (ResourceList, error) {
	list, err := c.client.CoreV1().Services(namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return ResourceList{}, fmt.Errorf("listing services in %q: %w", namespace, err)
	}
	return NewServiceList(list.Items), nil
}

// ListReplicaSets lists replica sets in the given namespace.
func (c *Cluster) ListReplicaSets(ctx context.Context, namespace string) (ResourceList, error) {
	list, err := c.client.AppsV1().ReplicaSets(namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return ResourceList{}, fmt.Errorf("listing replicasets in %q: %w", namespace, err)
	}
	return NewReplicaSetList(list.Items), nil
}

// ListStatefulSets lists stateful sets in the given namespace.
func (c *Cluster) ListStatefulSets(ctx context.Context, namespace string) (ResourceList, error) {
	list, err := c.client.AppsV1().StatefulSets(namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return ResourceList{}, fmt.Errorf("listing statefulsets in %q: %w", namespace, err)
	}
	return NewStatefulSetList(list.Items), nil
}

// ListConfigMaps lists config maps in the given namespace.
func (c *Cluster) ListConfigMaps(ctx context.Context, namespace string) (ResourceList, error) {
	list, err := c.client.CoreV1().ConfigMaps(namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return ResourceList{}, fmt.Errorf("listing configmaps in %q: %w", namespace, err)
	}
	return NewConfigMapList(list.Items), nil
}

// ListSecrets lists secrets in the given namespace.
func (c *Cluster) ListSecrets(ctx context.Context, namespace string) (ResourceList, error) {
	list, err := c.client.CoreV1().Secrets(namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return ResourceList{}, fmt.Errorf("listing secrets in %q: %w", namespace, err)
	}
	return NewSecretList(list.Items), nil
}

// ListJobs lists jobs in the given namespace.
func (c *Cluster) ListJobs(ctx context.Context, namespace string) (ResourceList, error) {
	list, err := c.client.BatchV1().Jobs(namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return ResourceList{}, fmt.Errorf("listing jobs in %q: %w", namespace, err)
	}
	return NewJobList(list.Items), nil
}
