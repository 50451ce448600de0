package report

// Bundled notification templates, used whenever no override path is
// configured. Template authors get the same bindings: application, stage,
// deployed_by, branch, repository_url, previous_revision, current_revision,
// subject, servers, entries (id, message) and deployed_at.

const textTemplate = `{{ subject }}

Application: {{ application }}
{% if stage != "" %}Stage:       {{ stage }}
{% endif %}{% if branch != "" %}Branch:      {{ branch }}
{% endif %}{% if previous_revision != "" %}Revisions:   {{ previous_revision | short_ref }} -> {{ current_revision | short_ref }}
{% endif %}Deployed by: {{ deployed_by }}
Deployed at: {{ deployed_at | date: "%Y-%m-%d %H:%M" }}
{% if servers.size > 0 %}
Servers:
{% for server in servers %}  - {{ server }}
{% endfor %}{% endif %}
Changes:
{% for entry in entries %}  {{ entry.id }} {{ entry.message }}
{% endfor %}`

const htmlTemplate = `<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333333; max-width: 640px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #2c3e50;">{{ subject }}</h2>
  <table cellpadding="4" cellspacing="0">
    <tr><td><strong>Application</strong></td><td>{{ application }}</td></tr>
    {% if stage != "" %}<tr><td><strong>Stage</strong></td><td>{{ stage }}</td></tr>
    {% endif %}{% if branch != "" %}<tr><td><strong>Branch</strong></td><td>{{ branch }}</td></tr>
    {% endif %}{% if previous_revision != "" %}<tr><td><strong>Revisions</strong></td><td>{{ previous_revision | short_ref }} &rarr; {{ current_revision | short_ref }}</td></tr>
    {% endif %}<tr><td><strong>Deployed by</strong></td><td>{{ deployed_by }}</td></tr>
    <tr><td><strong>Deployed at</strong></td><td>{{ deployed_at | date: "%Y-%m-%d %H:%M" }}</td></tr>
  </table>
{% if servers.size > 0 %}  <h3>Servers</h3>
  <ul>
    {% for server in servers %}<li>{{ server }}</li>
    {% endfor %}
  </ul>
{% endif %}  <h3>Changes</h3>
  <ul style="list-style: none; padding-left: 0; font-size: 14px;">
    {% for entry in entries %}<li><code>{% if repository_url != "" and entry.id != "n/a" %}<a href="{{ entry.id | commit_url: repository_url }}">{{ entry.id }}</a>{% else %}{{ entry.id }}{% endif %}</code> {{ entry.message | escape }}</li>
    {% endfor %}
  </ul>
</body>
</html>`
