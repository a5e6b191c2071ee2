package utils

import "testing"

func TestPackageFromCmdline(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		want    string
		wantErr bool
	}{
		{name: "单个参数", data: "com.decker.arbowling\x00", want: "com.decker.arbowling"},
		{name: "多个参数只取第一个", data: "com.decker.arbowling\x00--debug\x00", want: "com.decker.arbowling"},
		{name: "子进程后缀", data: "com.decker.arbowling:scores\x00", want: "com.decker.arbowling"},
		{name: "结尾换行", data: "com.decker.arbowling\n", want: "com.decker.arbowling"},
		{name: "空内容", data: "", wantErr: true},
		{name: "只有分隔符", data: "\x00\x00", wantErr: true},
		{name: "可执行文件路径", data: "/system/bin/app_process\x00", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := packageFromCmdline([]byte(tt.data))
			if tt.wantErr {
				if err == nil {
					t.Errorf("packageFromCmdline(%q) = %q, want error", tt.data, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("packageFromCmdline(%q): %v", tt.data, err)
			}
			if got != tt.want {
				t.Errorf("packageFromCmdline(%q) = %q, want %q", tt.data, got, tt.want)
			}
		})
	}
}
