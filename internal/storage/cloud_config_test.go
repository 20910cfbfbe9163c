package storage

import "testing"

func TestGCSConfig_Validation(t *testing.T) {
	tests := []struct {
		name    string
		config  GCSConfig
		wantErr bool
	}{
		{name: "valid config with default credentials", config: GCSConfig{Bucket: "b", UseDefaultCredential: true}, wantErr: false},
		{name: "valid config with credentials file", config: GCSConfig{Bucket: "b", CredentialsFile: "/path/creds.json"}, wantErr: false},
		{name: "empty bucket", config: GCSConfig{ProjectID: "p"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.config.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestAzureConfig_Validation(t *testing.T) {
	tests := []struct {
		name    string
		config  AzureConfig
		wantErr bool
	}{
		{name: "account key", config: AzureConfig{AccountName: "a", ContainerName: "c", AccountKey: "k"}, wantErr: false},
		{name: "managed identity", config: AzureConfig{AccountName: "a", ContainerName: "c", UseManagedIdentity: true}, wantErr: false},
		{name: "missing key", config: AzureConfig{AccountName: "a", ContainerName: "c"}, wantErr: true},
		{name: "missing account", config: AzureConfig{ContainerName: "c", AccountKey: "k"}, wantErr: true},
		{name: "missing container", config: AzureConfig{AccountName: "a", AccountKey: "k"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.config.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
