package k8s

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appsv1 "k8s.io/api/apps/v1"
	batchv1 "k8s.io/api/batch/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/kubernetes/fake"
)

func TestCluster_ListPods_NamespaceScoped(t *testing.T) {
	fakeClient := fake.NewClientset(
		&corev1.Pod{ObjectMeta: metav1.ObjectMeta{Name: "web-0", Namespace: "ns1"}},
		&corev1.Pod{ObjectMeta: metav1.ObjectMeta{Name: "web-1", Namespace: "ns1"}},
		&corev1.Pod{ObjectMeta: metav1.ObjectMeta{Name: "other", Namespace: "ns2"}},
	)
	cluster := NewCluster("test", fakeClient)

	list, err := cluster.ListPods(context.Background(), "ns1")
	require.NoError(t, err)
	assert.Equal(t, KindPod, list.Kind())
	assert.Equal(t, 2, list.Len(), "only ns1 pods should be listed")
}

func TestCluster_ListPods_AllNamespaces(t *testing.T) {
	fakeClient := fake.NewClientset(
		&corev1.Pod{ObjectMeta: metav1.ObjectMeta{Name: "a", Namespace: "ns1"}},
		&corev1.Pod{ObjectMeta: metav1.ObjectMeta{Name: "b", Namespace: "ns2"}},
	)
	cluster := NewCluster("test", fakeClient)

	list, err := cluster.ListPods(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, 2, list.Len(), "empty namespace should list across namespaces")
}

func TestCluster_ListNodes(t *testing.T) {
	fakeClient := fake.NewClientset(
		&corev1.Node{ObjectMeta: metav1.ObjectMeta{Name: "worker-1"}},
		&corev1.Node{ObjectMeta: metav1.ObjectMeta{Name: "worker-2"}},
	)
	cluster := NewCluster("test", fakeClient)

	list, err := cluster.ListNodes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, KindNode, list.Kind())
	assert.Equal(t, 2, list.Len())
}

func TestCluster_ListAllKinds(t *testing.T) {
	objects := []runtime.Object{
		&appsv1.Deployment{ObjectMeta: metav1.ObjectMeta{Name: "dep", Namespace: "ns1"}},
		&corev1.Service{ObjectMeta: metav1.ObjectMeta{Name: "svc", Namespace: "ns1"}},
		&appsv1.ReplicaSet{ObjectMeta: metav1.ObjectMeta{Name: "rs", Namespace: "ns1"}},
		&appsv1.StatefulSet{ObjectMeta: metav1.ObjectMeta{Name: "sts", Namespace: "ns1"}},
		&corev1.ConfigMap{ObjectMeta: metav1.ObjectMeta{Name: "cm", Namespace: "ns1"}},
		&corev1.Secret{ObjectMeta: metav1.ObjectMeta{Name: "sec", Namespace: "ns1"}},
		&batchv1.Job{ObjectMeta: metav1.ObjectMeta{Name: "job", Namespace: "ns1"}},
	}
	cluster := NewCluster("test", fake.NewClientset(objects...))
	ctx := context.Background()

	tests := []struct {
		name string
		kind Kind
		list func() (ResourceList, error)
	}{
		{"dep", KindDeployment, func() (ResourceList, error) { return cluster.ListDeployments(ctx, "ns1") }},
		{"svc", KindService, func() (ResourceList, error) { return cluster.ListServices(ctx, "ns1") }},
		{"rs", KindReplicaSet, func() (ResourceList, error) { return cluster.ListReplicaSets(ctx, "ns1") }},
		{"sts", KindStatefulSet, func() (ResourceList, error) { return cluster.ListStatefulSets(ctx, "ns1") }},
		{"cm", KindConfigMap, func() (ResourceList, error) { return cluster.ListConfigMaps(ctx, "ns1") }},
		{"sec", KindSecret, func() (ResourceList, error) { return cluster.ListSecrets(ctx, "ns1") }},
		{"job", KindJob, func() (ResourceList, error) { return cluster.ListJobs(ctx, "ns1") }},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			list, err := tt.list()
			require.NoError(t, err)
			assert.Equal(t, tt.kind, list.Kind())
			require.Equal(t, 1, list.Len())

			item, ok := list.Item(0)
			require.True(t, ok)
			assert.Equal(t, tt.name, item.Name)
			assert.Equal(t, "ns1", item.Namespace)
		})
	}
}
