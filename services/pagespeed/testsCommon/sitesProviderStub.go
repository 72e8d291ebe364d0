package testsCommon

// SitesProviderStub -
type SitesProviderStub struct {
	SitesHandler func() ([]string, error)
}

// Sites -
func (stub *SitesProviderStub) Sites() ([]string, error) {
	if stub.SitesHandler != nil {
		return stub.SitesHandler()
	}

	return make([]string, 0), nil
}

// IsInterfaceNil -
func (stub *SitesProviderStub) IsInterfaceNil() bool {
	return stub == nil
}
