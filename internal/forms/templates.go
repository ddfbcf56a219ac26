package forms

import "html/template"

var tmpl = template.Must(template.New("forms").Parse(`
{{- define "start" -}}
<div class="{{.D}}_form_container{{with .Container}} {{.}}{{end}}">
<form action="{{.T.Action}}" class="{{.D}}_form{{with .T.Class}} {{.}}{{end}}{{with .T.FormClass}} {{.}}{{end}}" id="{{.T.ID}}"{{with .T.Attr}} {{.}}{{end}}>
{{end -}}

{{- define "wrapperStart" -}}
{{.F.Before}}{{if .F.Inline}}<div class="col-sm-2">{{end}}
<label for="{{.ID}}" class="{{.D}}-label">{{.F.Label}}</label>
{{if .F.Inline}}</div>
<div class="col-sm-10">{{end}}
{{- end -}}

{{- define "wrapperEnd" -}}
{{with .F.Hint}}<small id="{{$.ID}}_help" class="form-text text-muted">{{.}}</small>{{end}}
{{if .F.Inline}}</div>{{end}}{{.F.After}}
{{- end -}}

{{- define "std" -}}
{{.F.BeforeWrapper}}
<div class="form-group {{.D}}-input-wrapper{{if .F.Inline}} row{{end}}{{with .F.Class}} {{.}}{{end}}">
{{template "wrapperStart" .}}
<input type="{{.F.Type}}" class="form-control {{.D}}-input" id="{{.ID}}" name="{{.F.Name}}" value="{{.Value}}" autocomplete="{{.F.Autocomplete}}" placeholder="{{.F.Placeholder}}" aria-describedby="{{.ID}}_help"{{.Attrs}}{{if .F.Required}} required="required"{{end}}>
{{template "wrapperEnd" .}}
</div>
{{.F.AfterWrapper}}
{{end -}}

{{- define "hidden" -}}
<input type="hidden" id="{{.ID}}" name="{{.F.Name}}" value="{{.Value}}">
{{end -}}

{{- define "file" -}}
{{.F.BeforeWrapper}}
<div class="input-group {{.D}}-input-wrapper{{if .F.Inline}} row{{end}}{{with .F.Class}} {{.}}{{end}}">
{{template "wrapperStart" .}}
<input type="file" class="form-control {{.D}}-input {{.D}}-attachment-uploader" id="{{.ID}}" name="{{.F.Name}}" aria-describedby="{{.ID}}_help" aria-label="Upload" accept="{{.F.Accept}}"{{.Attrs}}{{if .F.Multiple}} multiple{{end}}{{if .F.Required}} required="required"{{end}}>
<label class="input-group-text" for="{{.ID}}">{{.ButtonLabel}}</label>
{{template "wrapperEnd" .}}
</div>
{{.F.AfterWrapper}}
{{end -}}

{{- define "checkbox" -}}
<div class="form-group {{.D}}-input-wrapper{{with .F.Class}} {{.}}{{end}}">{{.F.Before}}
{{range .Choices -}}
<div class="form-check {{$.D}}-input-wrapper{{with .C.Class}} {{.}}{{end}}">{{.C.Before}}
<input type="checkbox" class="{{$.D}}-checkbox" id="{{.ID}}" name="{{.C.Name}}" value="{{.C.Value}}"{{if .C.Required}} required="required"{{end}}{{.Attrs}}{{if .C.Checked}} checked{{end}}>
<label for="{{.ID}}" class="{{$.D}}-label">{{.C.Label}}</label>{{.C.After}}
</div>
{{end -}}
{{.F.After}}</div>
{{end -}}

{{- define "radio" -}}
{{.F.Before}}<div class="{{.F.Class}}"><label>{{.F.Title}}</label>
{{range .Choices -}}
<div class="form-check {{$.D}}-input-wrapper{{with .C.Class}} {{.}}{{end}}">{{.C.Before}}
<input type="radio" class="{{$.D}}-radio" id="{{.ID}}" name="{{$.F.Name}}" value="{{.C.Value}}"{{if $.F.Required}} required="required"{{end}}{{.Attrs}}{{if .C.Checked}} checked{{end}}>
<label for="{{.ID}}" class="{{$.D}}-label">{{.C.Label}}</label>{{.C.After}}
</div>
{{end -}}
</div>{{.F.After}}
{{end -}}

{{- define "switch" -}}
<div class="custom-control custom-switch {{.D}}-input-wrapper{{with .F.Class}} {{.}}{{end}}">{{.F.Before}}
<input type="checkbox" class="custom-control-input {{.D}}-input {{.D}}-switch{{with .F.Class}} {{$.D}}-{{.}}{{end}}" id="{{.ID}}" name="{{.F.Name}}"{{if .F.Required}} required="required"{{end}}{{.Attrs}}{{if .F.Checked}} checked{{end}}>
<label class="custom-control-label" for="{{.ID}}">{{.F.Label}}</label>{{.F.After}}
</div>
{{end -}}

{{- define "textarea" -}}
<div class="form-group {{.D}}-input-wrapper{{if .F.Inline}} row{{end}}{{with .F.Class}} {{.}}{{end}}">
{{template "wrapperStart" .}}
<textarea class="form-control {{.D}}-textarea" id="{{.ID}}" name="{{.F.Name}}" placeholder="{{.F.Placeholder}}" autocomplete="{{.F.Autocomplete}}" rows="{{.Rows}}"{{if .F.Required}} required="required"{{end}}{{.Attrs}}>{{.Value}}</textarea>
{{template "wrapperEnd" .}}
</div>
{{end -}}

{{- define "select" -}}
<div class="form-group {{.D}}-input-wrapper{{if .F.Inline}} row{{end}}{{with .F.Class}} {{.}}{{end}}">
{{template "wrapperStart" .}}
<select class="form-control {{.D}}-input" id="{{.ID}}" name="{{.F.Name}}"{{.Attrs}}{{if .F.Required}} required="required"{{end}}{{if .F.Multiple}} multiple{{end}}>
{{if .Placeholder}}<option value="" disabled="disabled" selected>{{.F.Placeholder}}</option>
{{end -}}
{{range .Options}}<option value="{{.Value}}"{{if .Selected}} selected{{end}}>{{.Title}}</option>
{{end -}}
</select>
{{if .F.Inline}}</div>{{end}}{{.F.After}}
</div>
{{end -}}

{{- define "submit" -}}
{{.Recaptcha}}<div class="form-group">{{.F.Before}}
<button class="btn {{.D}}-btn{{with .F.Class}} {{.}}{{end}}" id="{{.ID}}" type="{{.F.Type}}">{{.Label}}</button>{{.F.After}}
</div>
{{end -}}
`))
