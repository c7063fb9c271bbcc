package k8s

import (
	appsv1 "k8s.io/api/apps/v1"
	batchv1 "k8s.io/api/batch/v1"
	corev1 "k8s.io/api/core/v1"
)

// Kind discriminates the closed set of resource kinds the shell can list and
// select. Adding a kind means extending every switch over Kind; the compiler
// keeps the use sites honest.
type Kind int

const (
	KindNone Kind = iota
	KindPod
	KindNode
	KindDeployment
	KindService
	KindReplicaSet
	KindStatefulSet
	KindConfigMap
	KindSecret
	KindJob
)

// String returns the kind's display name.
func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindPod:
		return "Pod"
	case KindNode:
		return "Node"
	case KindDeployment:
		return "Deployment"
	case KindService:
		return "Service"
	case KindReplicaSet:
		return "ReplicaSet"
	case KindStatefulSet:
		return "StatefulSet"
	case KindConfigMap:
		return "ConfigMap"
	case KindSecret:
		return "Secret"
	case KindJob:
		return "Job"
	default:
		return "unknown"
	}
}

// Namespaced reports whether objects of this kind live in a namespace.
// Nodes are the only cluster-scoped kind here.
func (k Kind) Namespaced() bool {
	return k != KindNode && k != KindNone
}

// ResourceList is a tagged union over the nine resource kinds, holding the
// items of the most recent list fetch for exactly one of them. The zero value
// is the empty list (KindNone).
type ResourceList struct {
	kind         Kind
	pods         []corev1.Pod
	nodes        []corev1.Node
	deployments  []appsv1.Deployment
	services     []corev1.Service
	replicaSets  []appsv1.ReplicaSet
	statefulSets []appsv1.StatefulSet
	configMaps   []corev1.ConfigMap
	secrets      []corev1.Secret
	jobs         []batchv1.Job
}

func NewPodList(items []corev1.Pod) ResourceList {
	return ResourceList{kind: KindPod, pods: items}
}

func NewNodeList(items []corev1.Node) ResourceList {
	return ResourceList{kind: KindNode, nodes: items}
}

func NewDeploymentList(items []appsv1.Deployment) ResourceList {
	return ResourceList{kind: KindDeployment, deployments: items}
}

func NewServiceList(items []corev1.Service) ResourceList {
	return ResourceList{kind: KindService, services: items}
}

func NewReplicaSetList(items []appsv1.ReplicaSet) ResourceList {
	return ResourceList{kind: KindReplicaSet, replicaSets: items}
}

func NewStatefulSetList(items []appsv1.StatefulSet) ResourceList {
	return ResourceList{kind: KindStatefulSet, statefulSets: items}
}

func NewConfigMapList(items []corev1.ConfigMap) ResourceList {
	return ResourceList{kind: KindConfigMap, configMaps: items}
}

func NewSecretList(items []corev1.Secret) ResourceList {
	return ResourceList{kind: KindSecret, secrets: items}
}

func NewJobList(items []batchv1.Job) ResourceList {
	return ResourceList{kind: KindJob, jobs: items}
}

// Kind returns the kind of the held items, or KindNone for the zero value.
func (l ResourceList) Kind() Kind {
	return l.kind
}

// Len returns the number of held items.
func (l ResourceList) Len() int {
	switch l.kind {
	case KindNone:
		return 0
	case KindPod:
		return len(l.pods)
	case KindNode:
		return len(l.nodes)
	case KindDeployment:
		return len(l.deployments)
	case KindService:
		return len(l.services)
	case KindReplicaSet:
		return len(l.replicaSets)
	case KindStatefulSet:
		return len(l.statefulSets)
	case KindConfigMap:
		return len(l.configMaps)
	case KindSecret:
		return len(l.secrets)
	case KindJob:
		return len(l.jobs)
	default:
		return 0
	}
}

// Item is an identity snapshot of one list entry: everything downstream
// commands need to address the object later, copied out of the list item so
// later mutation of the fetched objects cannot affect it. Namespace is empty
// for cluster-scoped kinds. Containers is populated for pods only, in the
// order declared in the pod spec.
type Item struct {
	Kind       Kind
	Name       string
	Namespace  string
	Containers []string
}

// Item returns the identity snapshot at index i, or false when i is out of
// range (including negative).
func (l ResourceList) Item(i int) (Item, bool) {
	if i < 0 || i >= l.Len() {
		return Item{}, false
	}

	switch l.kind {
	case KindPod:
		pod := &l.pods[i]
		containers := make([]string, 0, len(pod.Spec.Containers))
		for _, c := range pod.Spec.Containers {
			containers = append(containers, c.Name)
		}
		return Item{Kind: KindPod, Name: pod.Name, Namespace: pod.Namespace, Containers: containers}, true
	case KindNode:
		return Item{Kind: KindNode, Name: l.nodes[i].Name}, true
	case KindDeployment:
		d := &l.deployments[i]
		return Item{Kind: KindDeployment, Name: d.Name, Namespace: d.Namespace}, true
	case KindService:
		s := &l.services[i]
		return Item{Kind: KindService, Name: s.Name, Namespace: s.Namespace}, true
	case KindReplicaSet:
		rs := &l.replicaSets[i]
		return Item{Kind: KindReplicaSet, Name: rs.Name, Namespace: rs.Namespace}, true
	case KindStatefulSet:
		st := &l.statefulSets[i]
		return Item{Kind: KindStatefulSet, Name: st.Name, Namespace: st.Namespace}, true
	case KindConfigMap:
		cm := &l.configMaps[i]
		return Item{Kind: KindConfigMap, Name: cm.Name, Namespace: cm.Namespace}, true
	case KindSecret:
		s := &l.secrets[i]
		return Item{Kind: KindSecret, Name: s.Name, Namespace: s.Namespace}, true
	case KindJob:
		j := &l.jobs[i]
		return Item{Kind: KindJob, Name: j.Name, Namespace: j.Namespace}, true
	default:
		return Item{}, false
	}
}

// Items returns identity snapshots for every entry, in list order.
func (l ResourceList) Items() []Item {
	items := make([]Item, 0, l.Len())
	for i := 0; i < l.Len(); i++ {
		item, _ := l.Item(i)
		items = append(items, item)
	}
	return items
}
