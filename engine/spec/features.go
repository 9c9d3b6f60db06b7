package spec

// Feature identifies an optional part of the model whose representation a version may or
// may not support.
type Feature string

const (
	FeatureSerialNumber             Feature = "serial-number"
	FeatureBomRef                   Feature = "bom-ref"
	FeatureLicenseExpression        Feature = "license-expression"
	FeatureExternalReferences       Feature = "external-references"
	FeatureComponentScope           Feature = "component-scope"
	FeatureComponentModified        Feature = "component-modified"
	FeatureComponentPublisher       Feature = "component-publisher"
	FeatureMetadata                 Feature = "metadata"
	FeatureDependencyGraph          Feature = "dependency-graph"
	FeatureServices                 Feature = "services"
	FeatureComponentSupplier        Feature = "component-supplier"
	FeatureComponentAuthor          Feature = "component-author"
	FeatureComponentMimeType        Feature = "component-mime-type"
	FeatureMetadataManufacture      Feature = "metadata-manufacture"
	FeatureLegacyTools              Feature = "legacy-tools"
	FeatureProperties               Feature = "properties"
	FeatureMetadataLicenses         Feature = "metadata-licenses"
	FeatureComponentEvidence        Feature = "component-evidence"
	FeatureExternalReferenceHashes  Feature = "external-reference-hashes"
	FeatureRequiresComponentVersion Feature = "requires-component-version"
	FeatureVulnerabilities          Feature = "vulnerabilities"
	FeatureToolReferences           Feature = "tool-references"
	FeatureMetadataLifecycles       Feature = "metadata-lifecycles"
	FeatureFormulation              Feature = "formulation"
	FeatureBomLink                  Feature = "bom-link"
	FeatureBomProperties            Feature = "bom-properties"
	FeatureComponentAuthors         Feature = "component-authors"
	FeatureComponentManufacturer    Feature = "component-manufacturer"
	FeatureComponentOmniborID       Feature = "component-omnibor-id"
	FeatureComponentSWHID           Feature = "component-swhid"
	FeatureMetadataManufacturer     Feature = "metadata-manufacturer"
	FeatureLicenseAcknowledgement   Feature = "license-acknowledgement"
	FeatureToolExternalReferences   Feature = "tool-external-references"
)

// AllFeatures lists every feature identifier in a stable order.
func AllFeatures() []Feature {
	return []Feature{
		FeatureSerialNumber,
		FeatureBomRef,
		FeatureLicenseExpression,
		FeatureExternalReferences,
		FeatureComponentScope,
		FeatureComponentModified,
		FeatureComponentPublisher,
		FeatureMetadata,
		FeatureDependencyGraph,
		FeatureServices,
		FeatureComponentSupplier,
		FeatureComponentAuthor,
		FeatureComponentMimeType,
		FeatureMetadataManufacture,
		FeatureLegacyTools,
		FeatureProperties,
		FeatureMetadataLicenses,
		FeatureComponentEvidence,
		FeatureExternalReferenceHashes,
		FeatureRequiresComponentVersion,
		FeatureVulnerabilities,
		FeatureToolExternalReferences,
		FeatureToolReferences,
		FeatureMetadataLifecycles,
		FeatureFormulation,
		FeatureBomLink,
		FeatureBomProperties,
		FeatureComponentAuthors,
		FeatureComponentManufacturer,
		FeatureComponentOmniborID,
		FeatureComponentSWHID,
		FeatureMetadataManufacturer,
		FeatureLicenseAcknowledgement,
	}
}

var (
	features1dot0 = []Feature{
		FeatureComponentModified,
		FeatureComponentPublisher,
		FeatureRequiresComponentVersion,
	}
	features1dot1 = []Feature{
		FeatureSerialNumber,
		FeatureBomRef,
		FeatureLicenseExpression,
		FeatureExternalReferences,
		FeatureComponentScope,
		FeatureComponentPublisher,
		FeatureRequiresComponentVersion,
	}
	features1dot2 = append(cloneFeatures(features1dot1),
		FeatureMetadata,
		FeatureDependencyGraph,
		FeatureServices,
		FeatureComponentSupplier,
		FeatureComponentAuthor,
		FeatureComponentMimeType,
		FeatureMetadataManufacture,
		FeatureLegacyTools,
	)
	features1dot3 = append(cloneFeatures(features1dot2),
		FeatureProperties,
		FeatureMetadataLicenses,
		FeatureComponentEvidence,
		FeatureExternalReferenceHashes,
	)
	// 1.4 no longer requires a component version.
	features1dot4 = append(without(features1dot3, FeatureRequiresComponentVersion),
		FeatureVulnerabilities,
		FeatureToolExternalReferences,
	)
	features1dot5 = append(cloneFeatures(features1dot4),
		FeatureToolReferences,
		FeatureMetadataLifecycles,
		FeatureFormulation,
		FeatureBomLink,
		FeatureBomProperties,
	)
	features1dot6 = append(cloneFeatures(features1dot5),
		FeatureComponentAuthors,
		FeatureComponentManufacturer,
		FeatureComponentOmniborID,
		FeatureComponentSWHID,
		FeatureMetadataManufacturer,
		FeatureLicenseAcknowledgement,
	)
)

func cloneFeatures(in []Feature) []Feature {
	out := make([]Feature, len(in))
	copy(out, in)
	return out
}

func without(in []Feature, drop ...Feature) []Feature {
	out := make([]Feature, 0, len(in))
	for _, f := range in {
		skip := false
		for _, d := range drop {
			if f == d {
				skip = true
				break
			}
		}
		if !skip {
			out = append(out, f)
		}
	}
	return out
}
