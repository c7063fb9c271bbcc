package session

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/nvm/kshell/internal/k8s"
)

func podList(namespace string, names ...string) k8s.ResourceList {
	pods := make([]corev1.Pod, 0, len(names))
	for _, name := range names {
		pods = append(pods, corev1.Pod{
			ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: namespace},
			Spec: corev1.PodSpec{
				Containers: []corev1.Container{{Name: "app"}},
			},
		})
	}
	return k8s.NewPodList(pods)
}

func TestSelector_NoListReported(t *testing.T) {
	var out bytes.Buffer
	s := NewSelector(&out)

	s.SelectByIndex(0)

	assert.True(t, s.Current().Empty())
	assert.Contains(t, out.String(), "No active object list")
}

func TestSelector_SelectByIndex(t *testing.T) {
	var out bytes.Buffer
	s := NewSelector(&out)
	s.RecordList(podList("ns1", "p0", "p1", "p2"))

	s.SelectByIndex(1)

	sel := s.Current()
	require.False(t, sel.Empty())
	assert.Equal(t, k8s.KindPod, sel.Kind)
	assert.Equal(t, "p1", sel.Name)
	assert.Equal(t, "ns1", sel.Namespace)
	assert.Equal(t, []string{"app"}, sel.Containers)
}

func TestSelector_OutOfRangeClears(t *testing.T) {
	var out bytes.Buffer
	s := NewSelector(&out)
	s.RecordList(podList("ns1", "p0"))
	s.SelectByIndex(0)
	require.False(t, s.Current().Empty())

	s.SelectByIndex(5)

	assert.True(t, s.Current().Empty())
	assert.Empty(t, out.String())
}

func TestSelector_NoListLeavesSelection(t *testing.T) {
	var out bytes.Buffer
	s := NewSelector(&out)
	s.RecordList(podList("ns1", "p0"))
	s.SelectByIndex(0)

	// A fresh selector with no list keeps whatever was selected before.
	s.RecordList(k8s.ResourceList{})
	s.SelectByIndex(0)

	assert.Equal(t, "p0", s.Current().Name)
}

func TestSelector_NamelessItemClears(t *testing.T) {
	var out bytes.Buffer
	s := NewSelector(&out)
	s.RecordList(k8s.NewPodList([]corev1.Pod{{}}))

	s.SelectByIndex(0)

	assert.True(t, s.Current().Empty())
	assert.Contains(t, out.String(), "no name in metadata")
}

func TestSelector_RecordListReplacesAcrossKinds(t *testing.T) {
	var out bytes.Buffer
	s := NewSelector(&out)
	s.RecordList(podList("ns1", "p0"))
	s.RecordList(k8s.NewNodeList([]corev1.Node{
		{ObjectMeta: metav1.ObjectMeta{Name: "node-a"}},
	}))

	s.SelectByIndex(0)

	sel := s.Current()
	assert.Equal(t, k8s.KindNode, sel.Kind)
	assert.Equal(t, "node-a", sel.Name)
	assert.Empty(t, sel.Namespace)
}

func TestSelector_CurrentPodName(t *testing.T) {
	var out bytes.Buffer
	s := NewSelector(&out)

	_, ok := s.CurrentPodName()
	assert.False(t, ok)

	s.RecordList(podList("ns1", "p0"))
	s.SelectByIndex(0)

	name, ok := s.CurrentPodName()
	require.True(t, ok)
	assert.Equal(t, "p0", name)

	s.RecordList(k8s.NewNodeList([]corev1.Node{
		{ObjectMeta: metav1.ObjectMeta{Name: "node-a"}},
	}))
	s.SelectByIndex(0)

	_, ok = s.CurrentPodName()
	assert.False(t, ok)
}

func TestSelector_Clear(t *testing.T) {
	var out bytes.Buffer
	s := NewSelector(&out)
	s.RecordList(podList("ns1", "p0"))
	s.SelectByIndex(0)

	s.Clear()

	assert.True(t, s.Current().Empty())
}
