package store

import (
	"context"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"

	"github.com/lightbake/lbake/internal/output"
)

// DefaultConfigMapKey is the data key holding the blob.
const DefaultConfigMapKey = "renderSets"

// ConfigMapBackend keeps the blob in one key of a Kubernetes ConfigMap, so a
// team can share render set definitions across workstations.
type ConfigMapBackend struct {
	Client    kubernetes.Interface
	Namespace string
	Name      string
	Key       string
}

// NewConfigMapBackend returns a ConfigMap backend.
func NewConfigMapBackend(client kubernetes.Interface, namespace, name, key string) *ConfigMapBackend {
	if key == "" {
		key = DefaultConfigMapKey
	}
	return &ConfigMapBackend{Client: client, Namespace: namespace, Name: name, Key: key}
}

// Read implements Backend.
func (b *ConfigMapBackend) Read(ctx context.Context) (string, bool, error) {
	cm, err := b.Client.CoreV1().ConfigMaps(b.Namespace).Get(ctx, b.Name, metav1.GetOptions{})
	if err != nil {
		if apierrors.IsNotFound(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("getting ConfigMap %q: %w", b.Name, err)
	}
	blob, ok := cm.Data[b.Key]
	return blob, ok, nil
}

// Write implements Backend. Existing ConfigMaps are updated with their
// current resourceVersion so a concurrent writer causes a conflict.
func (b *ConfigMapBackend) Write(ctx context.Context, blob string) error {
	cms := b.Client.CoreV1().ConfigMaps(b.Namespace)

	cm, err := cms.Get(ctx, b.Name, metav1.GetOptions{})
	if apierrors.IsNotFound(err) {
		cm = &corev1.ConfigMap{
			ObjectMeta: metav1.ObjectMeta{
				Name:      b.Name,
				Namespace: b.Namespace,
				Labels: map[string]string{
					"app.kubernetes.io/managed-by": "lbake",
				},
			},
			Data: map[string]string{b.Key: blob},
		}
		if _, err := cms.Create(ctx, cm, metav1.CreateOptions{}); err != nil {
			return fmt.Errorf("creating ConfigMap %q: %w", b.Name, err)
		}
		output.Debug("created render set ConfigMap", "name", b.Name, "namespace", b.Namespace)
		return nil
	}
	if err != nil {
		return fmt.Errorf("getting ConfigMap %q: %w", b.Name, err)
	}

	if cm.Data == nil {
		cm.Data = map[string]string{}
	}
	cm.Data[b.Key] = blob
	if _, err := cms.Update(ctx, cm, metav1.UpdateOptions{}); err != nil {
		if apierrors.IsConflict(err) {
			return fmt.Errorf("ConfigMap %q was modified concurrently, retry the command: %w", b.Name, err)
		}
		return fmt.Errorf("updating ConfigMap %q: %w", b.Name, err)
	}
	return nil
}

// Describe implements Backend.
func (b *ConfigMapBackend) Describe() string {
	return fmt.Sprintf("ConfigMap %s/%s[%s]", b.Namespace, b.Name, b.Key)
}
