// Package intake reads BOM descriptions written in YAML or JSON and turns them into the
// in-memory model.
//
// The accepted shape follows the CycloneDX JSON layout. Cross references are written as
// bom-ref strings and are resolved to the referenced entity, either through the top level
// dependencies list or through a dependsOn list on the component or service itself.
package intake

type Document struct {
	BomFormat          string              `yaml:"bomFormat,omitempty"          mapstructure:"bomFormat"`
	SpecVersion        string              `yaml:"specVersion,omitempty"        mapstructure:"specVersion"`
	SerialNumber       string              `yaml:"serialNumber,omitempty"       mapstructure:"serialNumber"`
	Version            int                 `yaml:"version,omitempty"            mapstructure:"version"`
	Metadata           *Metadata           `yaml:"metadata,omitempty"           mapstructure:"metadata"`
	Components         []*Component        `yaml:"components,omitempty"         mapstructure:"components"`
	Services           []*Service          `yaml:"services,omitempty"           mapstructure:"services"`
	ExternalReferences []ExternalReference `yaml:"externalReferences,omitempty" mapstructure:"externalReferences"`
	Dependencies       []Dependency        `yaml:"dependencies,omitempty"       mapstructure:"dependencies"`
	Vulnerabilities    []*Vulnerability    `yaml:"vulnerabilities,omitempty"    mapstructure:"vulnerabilities"`
	Formulation        []*Formula          `yaml:"formulation,omitempty"        mapstructure:"formulation"`
	Properties         []Property          `yaml:"properties,omitempty"         mapstructure:"properties"`
}

type Metadata struct {
	Timestamp    string         `yaml:"timestamp,omitempty"    mapstructure:"timestamp"`
	Lifecycles   []Lifecycle    `yaml:"lifecycles,omitempty"   mapstructure:"lifecycles"`
	Tools        any            `yaml:"tools,omitempty"        mapstructure:"tools"`
	Authors      []Contact      `yaml:"authors,omitempty"      mapstructure:"authors"`
	Component    *Component     `yaml:"component,omitempty"    mapstructure:"component"`
	Manufacture  *Entity        `yaml:"manufacture,omitempty"  mapstructure:"manufacture"`
	Manufacturer *Entity        `yaml:"manufacturer,omitempty" mapstructure:"manufacturer"`
	Supplier     *Entity        `yaml:"supplier,omitempty"     mapstructure:"supplier"`
	Licenses     []LicenseEntry `yaml:"licenses,omitempty"     mapstructure:"licenses"`
	Properties   []Property     `yaml:"properties,omitempty"   mapstructure:"properties"`
}

type Lifecycle struct {
	Phase       string `yaml:"phase,omitempty"       mapstructure:"phase"`
	Name        string `yaml:"name,omitempty"        mapstructure:"name"`
	Description string `yaml:"description,omitempty" mapstructure:"description"`
}

// Tools is the structured form of metadata.tools. The legacy form is a plain list of Tool.
type Tools struct {
	Components []*Component `yaml:"components,omitempty" mapstructure:"components"`
	Services   []*Service   `yaml:"services,omitempty"   mapstructure:"services"`
}

type Tool struct {
	Vendor             string              `yaml:"vendor,omitempty"             mapstructure:"vendor"`
	Name               string              `yaml:"name,omitempty"               mapstructure:"name"`
	Version            string              `yaml:"version,omitempty"            mapstructure:"version"`
	Hashes             []Hash              `yaml:"hashes,omitempty"             mapstructure:"hashes"`
	ExternalReferences []ExternalReference `yaml:"externalReferences,omitempty" mapstructure:"externalReferences"`
}

type Contact struct {
	Name  string `yaml:"name,omitempty"  mapstructure:"name"`
	Email string `yaml:"email,omitempty" mapstructure:"email"`
	Phone string `yaml:"phone,omitempty" mapstructure:"phone"`
}

type Entity struct {
	Name    string    `yaml:"name,omitempty"    mapstructure:"name"`
	URL     []string  `yaml:"url,omitempty"     mapstructure:"url"`
	Contact []Contact `yaml:"contact,omitempty" mapstructure:"contact"`
}

type Hash struct {
	Alg     string `yaml:"alg"     mapstructure:"alg"`
	Content string `yaml:"content" mapstructure:"content"`
}

type Attachment struct {
	Content     string `yaml:"content"               mapstructure:"content"`
	ContentType string `yaml:"contentType,omitempty" mapstructure:"contentType"`
	Encoding    string `yaml:"encoding,omitempty"    mapstructure:"encoding"`
}

type License struct {
	ID              string      `yaml:"id,omitempty"              mapstructure:"id"`
	Name            string      `yaml:"name,omitempty"            mapstructure:"name"`
	Text            *Attachment `yaml:"text,omitempty"            mapstructure:"text"`
	URL             string      `yaml:"url,omitempty"             mapstructure:"url"`
	Acknowledgement string      `yaml:"acknowledgement,omitempty" mapstructure:"acknowledgement"`
}

// LicenseEntry is one license choice: either a wrapped license or an expression.
type LicenseEntry struct {
	License         *License `yaml:"license,omitempty"         mapstructure:"license"`
	Expression      string   `yaml:"expression,omitempty"      mapstructure:"expression"`
	Acknowledgement string   `yaml:"acknowledgement,omitempty" mapstructure:"acknowledgement"`
}

type ExternalReference struct {
	URL     string `yaml:"url"               mapstructure:"url"`
	Type    string `yaml:"type"              mapstructure:"type"`
	Comment string `yaml:"comment,omitempty" mapstructure:"comment"`
	Hashes  []Hash `yaml:"hashes,omitempty"  mapstructure:"hashes"`
}

type Property struct {
	Name  string `yaml:"name"            mapstructure:"name"`
	Value string `yaml:"value,omitempty" mapstructure:"value"`
}

type Evidence struct {
	Licenses  []LicenseEntry `yaml:"licenses,omitempty"  mapstructure:"licenses"`
	Copyright []struct {
		Text string `yaml:"text" mapstructure:"text"`
	} `yaml:"copyright,omitempty" mapstructure:"copyright"`
}

type Component struct {
	Type               string              `yaml:"type"                         mapstructure:"type"`
	MimeType           string              `yaml:"mime-type,omitempty"          mapstructure:"mime-type"`
	BomRef             string              `yaml:"bom-ref,omitempty"            mapstructure:"bom-ref"`
	Supplier           *Entity             `yaml:"supplier,omitempty"           mapstructure:"supplier"`
	Manufacturer       *Entity             `yaml:"manufacturer,omitempty"       mapstructure:"manufacturer"`
	Authors            []Contact           `yaml:"authors,omitempty"            mapstructure:"authors"`
	Author             string              `yaml:"author,omitempty"             mapstructure:"author"`
	Publisher          string              `yaml:"publisher,omitempty"          mapstructure:"publisher"`
	Group              string              `yaml:"group,omitempty"              mapstructure:"group"`
	Name               string              `yaml:"name"                         mapstructure:"name"`
	Version            string              `yaml:"version,omitempty"            mapstructure:"version"`
	Description        string              `yaml:"description,omitempty"        mapstructure:"description"`
	Scope              string              `yaml:"scope,omitempty"              mapstructure:"scope"`
	Hashes             []Hash              `yaml:"hashes,omitempty"             mapstructure:"hashes"`
	Licenses           []LicenseEntry      `yaml:"licenses,omitempty"           mapstructure:"licenses"`
	Copyright          string              `yaml:"copyright,omitempty"          mapstructure:"copyright"`
	CPE                string              `yaml:"cpe,omitempty"                mapstructure:"cpe"`
	PURL               string              `yaml:"purl,omitempty"               mapstructure:"purl"`
	OmniborID          []string            `yaml:"omniborId,omitempty"          mapstructure:"omniborId"`
	SWHID              []string            `yaml:"swhid,omitempty"              mapstructure:"swhid"`
	Modified           bool                `yaml:"modified,omitempty"           mapstructure:"modified"`
	ExternalReferences []ExternalReference `yaml:"externalReferences,omitempty" mapstructure:"externalReferences"`
	Properties         []Property          `yaml:"properties,omitempty"         mapstructure:"properties"`
	Components         []*Component        `yaml:"components,omitempty"         mapstructure:"components"`
	Evidence           *Evidence           `yaml:"evidence,omitempty"           mapstructure:"evidence"`
	DependsOn          []string            `yaml:"dependsOn,omitempty"          mapstructure:"dependsOn"`
}

type Service struct {
	BomRef             string              `yaml:"bom-ref,omitempty"            mapstructure:"bom-ref"`
	Provider           *Entity             `yaml:"provider,omitempty"           mapstructure:"provider"`
	Group              string              `yaml:"group,omitempty"              mapstructure:"group"`
	Name               string              `yaml:"name"                         mapstructure:"name"`
	Version            string              `yaml:"version,omitempty"            mapstructure:"version"`
	Description        string              `yaml:"description,omitempty"        mapstructure:"description"`
	Endpoints          []string            `yaml:"endpoints,omitempty"          mapstructure:"endpoints"`
	Authenticated      *bool               `yaml:"authenticated,omitempty"      mapstructure:"authenticated"`
	XTrustBoundary     *bool               `yaml:"x-trust-boundary,omitempty"   mapstructure:"x-trust-boundary"`
	Licenses           []LicenseEntry      `yaml:"licenses,omitempty"           mapstructure:"licenses"`
	ExternalReferences []ExternalReference `yaml:"externalReferences,omitempty" mapstructure:"externalReferences"`
	Properties         []Property          `yaml:"properties,omitempty"         mapstructure:"properties"`
	Services           []*Service          `yaml:"services,omitempty"           mapstructure:"services"`
	DependsOn          []string            `yaml:"dependsOn,omitempty"          mapstructure:"dependsOn"`
}

type Dependency struct {
	Ref       string   `yaml:"ref"                 mapstructure:"ref"`
	DependsOn []string `yaml:"dependsOn,omitempty" mapstructure:"dependsOn"`
}

type VulnerabilitySource struct {
	Name string `yaml:"name,omitempty" mapstructure:"name"`
	URL  string `yaml:"url,omitempty"  mapstructure:"url"`
}

type Rating struct {
	Source        *VulnerabilitySource `yaml:"source,omitempty"        mapstructure:"source"`
	Score         *float64             `yaml:"score,omitempty"         mapstructure:"score"`
	Severity      string               `yaml:"severity,omitempty"      mapstructure:"severity"`
	Method        string               `yaml:"method,omitempty"        mapstructure:"method"`
	Vector        string               `yaml:"vector,omitempty"        mapstructure:"vector"`
	Justification string               `yaml:"justification,omitempty" mapstructure:"justification"`
}

type Analysis struct {
	State         string   `yaml:"state,omitempty"         mapstructure:"state"`
	Justification string   `yaml:"justification,omitempty" mapstructure:"justification"`
	Response      []string `yaml:"response,omitempty"      mapstructure:"response"`
	Detail        string   `yaml:"detail,omitempty"        mapstructure:"detail"`
}

type AffectedVersion struct {
	Version string `yaml:"version,omitempty" mapstructure:"version"`
	Range   string `yaml:"range,omitempty"   mapstructure:"range"`
	Status  string `yaml:"status,omitempty"  mapstructure:"status"`
}

type Affect struct {
	Ref      string            `yaml:"ref"                mapstructure:"ref"`
	Versions []AffectedVersion `yaml:"versions,omitempty" mapstructure:"versions"`
}

type Vulnerability struct {
	BomRef      string              `yaml:"bom-ref,omitempty"     mapstructure:"bom-ref"`
	ID          string              `yaml:"id,omitempty"          mapstructure:"id"`
	Source      *VulnerabilitySource `yaml:"source,omitempty"      mapstructure:"source"`
	References  []struct {
		ID     string              `yaml:"id"     mapstructure:"id"`
		Source VulnerabilitySource `yaml:"source" mapstructure:"source"`
	} `yaml:"references,omitempty" mapstructure:"references"`
	Ratings        []Rating   `yaml:"ratings,omitempty"        mapstructure:"ratings"`
	CWEs           []int      `yaml:"cwes,omitempty"           mapstructure:"cwes"`
	Description    string     `yaml:"description,omitempty"    mapstructure:"description"`
	Detail         string     `yaml:"detail,omitempty"         mapstructure:"detail"`
	Recommendation string     `yaml:"recommendation,omitempty" mapstructure:"recommendation"`
	Advisories     []struct {
		Title string `yaml:"title,omitempty" mapstructure:"title"`
		URL   string `yaml:"url"             mapstructure:"url"`
	} `yaml:"advisories,omitempty" mapstructure:"advisories"`
	Created    string     `yaml:"created,omitempty"    mapstructure:"created"`
	Published  string     `yaml:"published,omitempty"  mapstructure:"published"`
	Updated    string     `yaml:"updated,omitempty"    mapstructure:"updated"`
	Analysis   *Analysis  `yaml:"analysis,omitempty"   mapstructure:"analysis"`
	Affects    []Affect   `yaml:"affects,omitempty"    mapstructure:"affects"`
	Properties []Property `yaml:"properties,omitempty" mapstructure:"properties"`
}

type Formula struct {
	BomRef     string       `yaml:"bom-ref,omitempty"    mapstructure:"bom-ref"`
	Components []*Component `yaml:"components,omitempty" mapstructure:"components"`
	Services   []*Service   `yaml:"services,omitempty"   mapstructure:"services"`
	Properties []Property   `yaml:"properties,omitempty" mapstructure:"properties"`
}
