package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	utilyaml "k8s.io/apimachinery/pkg/util/yaml"

	"github.com/kode4food/kubetour/internal/catalog"
	"github.com/kode4food/kubetour/pkg/api"
)

type (
	// Annotator matches manifest fields against the catalog's field mappings
	Annotator struct {
		catalog *catalog.Catalog
	}

	walker struct {
		catalog *catalog.Catalog
		doc     int
		kind    string
		name    string
		out     []*api.Annotation
	}
)

const decodeBufferSize = 4096

var (
	ErrManifestEmpty   = errors.New("manifest contains no documents")
	ErrManifestInvalid = errors.New("manifest invalid")
)

var deploymentGVK = appsv1.SchemeGroupVersion.WithKind("Deployment")

// NewAnnotator creates an Annotator over the given catalog
func NewAnnotator(c *catalog.Catalog) *Annotator {
	return &Annotator{catalog: c}
}

// Annotate decodes every YAML or JSON document in data and reports the
// mapped fields present in each one
func (a *Annotator) Annotate(data []byte) (*api.AnnotateResponse, error) {
	objs, err := Decode(data)
	if err != nil {
		return nil, err
	}

	res := &api.AnnotateResponse{Annotations: []*api.Annotation{}}
	for i, obj := range objs {
		w := &walker{
			catalog: a.catalog,
			doc:     i,
			kind:    obj.GetKind(),
			name:    obj.GetName(),
		}
		w.walk(obj.Object, nil, nil)
		res.Annotations = append(res.Annotations, w.out...)

		if obj.GroupVersionKind() != deploymentGVK {
			continue
		}
		ws, err := summarizeDeployment(obj)
		if err != nil {
			return nil, fmt.Errorf("%w: document %d: %w",
				ErrManifestInvalid, i, err)
		}
		res.Workloads = append(res.Workloads, ws)
	}
	res.Count = len(res.Annotations)
	return res, nil
}

// Decode splits data into unstructured objects, skipping empty documents
func Decode(data []byte) ([]*unstructured.Unstructured, error) {
	dec := utilyaml.NewYAMLOrJSONDecoder(
		bytes.NewReader(data), decodeBufferSize,
	)

	var res []*unstructured.Unstructured
	for {
		var raw runtime.RawExtension
		if err := dec.Decode(&raw); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("%w: %w", ErrManifestInvalid, err)
		}
		if len(bytes.TrimSpace(raw.Raw)) == 0 {
			continue
		}

		obj := &unstructured.Unstructured{}
		if err := obj.UnmarshalJSON(raw.Raw); err != nil {
			return nil, fmt.Errorf("%w: document %d: %w",
				ErrManifestInvalid, len(res), err)
		}
		res = append(res, obj)
	}

	if len(res) == 0 {
		return nil, ErrManifestEmpty
	}
	return res, nil
}

func (w *walker) walk(v any, pattern, concrete []string) {
	if len(pattern) > 0 {
		if m, ok := w.catalog.MatchField(pattern); ok {
			w.out = append(w.out, &api.Annotation{
				Document:  w.doc,
				Kind:      w.kind,
				Name:      w.name,
				Path:      api.JoinPath(concrete),
				Component: m.Component,
				Note:      m.Note,
				Value:     scalar(v),
			})
		}
		if !w.catalog.IsMappedPrefix(pattern) {
			return
		}
	}

	switch v := v.(type) {
	case map[string]any:
		for _, k := range slices.Sorted(maps.Keys(v)) {
			w.walk(v[k], append(pattern, k), append(concrete, k))
		}
	case []any:
		for i, elem := range v {
			w.walk(elem,
				append(pattern, api.ListMarker),
				append(concrete, strconv.Itoa(i)),
			)
		}
	}
}

func scalar(v any) any {
	switch v.(type) {
	case map[string]any, []any:
		return nil
	default:
		return v
	}
}

func summarizeDeployment(
	obj *unstructured.Unstructured,
) (*api.WorkloadSummary, error) {
	var d appsv1.Deployment
	err := runtime.DefaultUnstructuredConverter.FromUnstructured(
		obj.UnstructuredContent(), &d,
	)
	if err != nil {
		return nil, err
	}

	replicas := int32(1)
	if d.Spec.Replicas != nil {
		replicas = *d.Spec.Replicas
	}

	containers := d.Spec.Template.Spec.Containers
	res := &api.WorkloadSummary{
		Name:     d.Name,
		Replicas: replicas,
		Images:   make([]string, 0, len(containers)),
	}
	totals := corev1.ResourceList{}
	for _, c := range containers {
		res.Images = append(res.Images, c.Image)
		for name, q := range c.Resources.Requests {
			sum := totals[name]
			sum.Add(q)
			totals[name] = sum
		}
	}
	if len(totals) > 0 {
		res.Requests = formatResources(totals)
	}
	return res, nil
}

func formatResources(list corev1.ResourceList) map[string]string {
	res := make(map[string]string, len(list))
	for name, q := range list {
		res[string(name)] = q.String()
	}
	return res
}
