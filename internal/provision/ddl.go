package provision

// tenantDDL is the full per-tenant schema, applied on every provisioning run.
// Every statement is idempotent, so re-running provisioning against an
// existing tenant only fills in what is missing.
var tenantDDL = []string{
	`CREATE TABLE IF NOT EXISTS members (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		email VARCHAR(255) NOT NULL,
		first_name VARCHAR(100) NOT NULL DEFAULT '',
		last_name VARCHAR(100) NOT NULL DEFAULT '',
		phone VARCHAR(50) NOT NULL DEFAULT '',
		meta JSON NULL,
		created_by BIGINT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uq_members_email (email)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS users (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		email VARCHAR(255) NOT NULL,
		full_name VARCHAR(255) NOT NULL DEFAULT '',
		password_hash VARCHAR(255) NOT NULL,
		role VARCHAR(50) NOT NULL DEFAULT '',
		is_active TINYINT(1) NOT NULL DEFAULT 1,
		member_id BIGINT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		UNIQUE KEY uq_users_email (email),
		CONSTRAINT fk_users_member FOREIGN KEY (member_id) REFERENCES members(id) ON DELETE SET NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS roles (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(100) NOT NULL,
		description VARCHAR(255) NOT NULL DEFAULT '',
		is_builtin TINYINT(1) NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uq_roles_name (name)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS permissions (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		code VARCHAR(100) NOT NULL,
		description VARCHAR(255) NOT NULL DEFAULT '',
		UNIQUE KEY uq_permissions_code (code)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS role_permissions (
		role_id BIGINT NOT NULL,
		permission_id BIGINT NOT NULL,
		PRIMARY KEY (role_id, permission_id),
		CONSTRAINT fk_rp_role FOREIGN KEY (role_id) REFERENCES roles(id) ON DELETE CASCADE,
		CONSTRAINT fk_rp_permission FOREIGN KEY (permission_id) REFERENCES permissions(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS projects (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		description TEXT,
		start_date DATE NULL,
		end_date DATE NULL,
		status VARCHAR(50) NOT NULL DEFAULT 'active',
		created_by BIGINT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS subprojects (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		project_id BIGINT NOT NULL,
		name VARCHAR(255) NOT NULL,
		description TEXT,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		CONSTRAINT fk_subprojects_project FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS tenant_role_assignments (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		member_id BIGINT NOT NULL,
		role_id BIGINT NOT NULL,
		assigned_by BIGINT NULL,
		assigned_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uq_tenant_assignment (member_id, role_id),
		CONSTRAINT fk_tra_member FOREIGN KEY (member_id) REFERENCES members(id) ON DELETE CASCADE,
		CONSTRAINT fk_tra_role FOREIGN KEY (role_id) REFERENCES roles(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS project_role_assignments (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		project_id BIGINT NOT NULL,
		member_id BIGINT NOT NULL,
		role_id BIGINT NOT NULL,
		assigned_by BIGINT NULL,
		assigned_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uq_project_assignment (project_id, member_id, role_id),
		CONSTRAINT fk_pra_project FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE,
		CONSTRAINT fk_pra_member FOREIGN KEY (member_id) REFERENCES members(id) ON DELETE CASCADE,
		CONSTRAINT fk_pra_role FOREIGN KEY (role_id) REFERENCES roles(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS tasks (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		project_id BIGINT NOT NULL,
		subproject_id BIGINT NULL,
		title VARCHAR(255) NOT NULL,
		description TEXT,
		status VARCHAR(50) NOT NULL DEFAULT 'todo',
		priority VARCHAR(50) NOT NULL DEFAULT 'medium',
		assigned_to BIGINT NULL,
		created_by BIGINT NULL,
		due_date DATE NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		KEY ix_tasks_project (project_id),
		KEY ix_tasks_assigned (assigned_to),
		CONSTRAINT fk_tasks_project FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE,
		CONSTRAINT fk_tasks_subproject FOREIGN KEY (subproject_id) REFERENCES subprojects(id) ON DELETE SET NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS comments (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		task_id BIGINT NOT NULL,
		commenter_id BIGINT NOT NULL,
		comment_text TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		KEY ix_comments_task (task_id),
		CONSTRAINT fk_comments_task FOREIGN KEY (task_id) REFERENCES tasks(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS time_entries (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		task_id BIGINT NOT NULL,
		member_id BIGINT NOT NULL,
		hours DECIMAL(7,2) NOT NULL,
		entry_date DATE NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		KEY ix_time_entries_task (task_id),
		KEY ix_time_entries_member (member_id),
		CONSTRAINT fk_te_task FOREIGN KEY (task_id) REFERENCES tasks(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS timers (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		task_id BIGINT NOT NULL,
		member_id BIGINT NOT NULL,
		started_at TIMESTAMP NOT NULL,
		paused_at TIMESTAMP NULL,
		paused_seconds BIGINT NOT NULL DEFAULT 0,
		UNIQUE KEY uq_timers_member (member_id),
		CONSTRAINT fk_timers_task FOREIGN KEY (task_id) REFERENCES tasks(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS teams (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		slug VARCHAR(255) NOT NULL,
		description TEXT,
		team_lead_id BIGINT NULL,
		created_by BIGINT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uq_teams_slug (slug)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS team_memberships (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		team_id BIGINT NOT NULL,
		member_id BIGINT NOT NULL,
		team_role VARCHAR(50) NOT NULL DEFAULT 'member',
		added_by BIGINT NULL,
		added_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uq_team_member (team_id, member_id),
		CONSTRAINT fk_tm_team FOREIGN KEY (team_id) REFERENCES teams(id) ON DELETE CASCADE,
		CONSTRAINT fk_tm_member FOREIGN KEY (member_id) REFERENCES members(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS chat_messages (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		team_id BIGINT NOT NULL,
		sender_id BIGINT NOT NULL,
		body TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		KEY ix_chat_team (team_id),
		CONSTRAINT fk_chat_team FOREIGN KEY (team_id) REFERENCES teams(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS notifications (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		member_id BIGINT NOT NULL,
		kind VARCHAR(50) NOT NULL,
		message VARCHAR(500) NOT NULL,
		entity_type VARCHAR(50) NOT NULL DEFAULT '',
		entity_id BIGINT NULL,
		is_read TINYINT(1) NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		KEY ix_notifications_member (member_id, is_read)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS activity_log (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		entity_type VARCHAR(50) NOT NULL,
		entity_id BIGINT NOT NULL,
		action VARCHAR(100) NOT NULL,
		performed_by BIGINT NULL,
		timestamp TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		KEY ix_activity_entity (entity_type, entity_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}
